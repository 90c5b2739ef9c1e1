package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nemopss/expense-tracker/backend/models"
)

var hundred = decimal.NewFromInt(100)

// TimeFrame selects how the chart series is bucketed.
type TimeFrame string

const (
	Weekly    TimeFrame = "week"
	Monthly   TimeFrame = "month"
	Quarterly TimeFrame = "year"
)

func ParseTimeFrame(s string) (TimeFrame, bool) {
	switch TimeFrame(s) {
	case "", Monthly:
		return Monthly, true
	case Quarterly, "quarter":
		return Quarterly, true
	case Weekly:
		return Weekly, true
	}
	return "", false
}

type Summary struct {
	Total            decimal.Decimal `json:"total" swaggertype:"number" example:"180"`
	Average          decimal.Decimal `json:"average" swaggertype:"number" example:"90"`
	Highest          decimal.Decimal `json:"highest" swaggertype:"number" example:"150"`
	HighestMonth     int             `json:"highestMonth" example:"1"`
	HighestYear      int             `json:"highestYear,omitempty" example:"2024"`
	HighestMonthName string          `json:"highestMonthName" example:"January"`
	// Trend is the percentage change from the previous bucket to the latest one.
	Trend decimal.Decimal `json:"trend" swaggertype:"number" example:"-80"`
}

type CategoryTotal struct {
	CategoryID int64           `json:"category_id" example:"1"`
	Label      string          `json:"label,omitempty" example:"Food"`
	Icon       string          `json:"icon,omitempty" example:"🍔"`
	Amount     decimal.Decimal `json:"amount" swaggertype:"number" example:"150"`
	Count      int             `json:"count" example:"2"`
}

type Point struct {
	Period        string          `json:"period" example:"Jan"`
	TotalExpenses decimal.Decimal `json:"totalExpenses" swaggertype:"number" example:"150"`
	Count         int             `json:"count" example:"2"`
}

type Stats struct {
	Summary    Summary         `json:"summary"`
	TimeFrame  TimeFrame       `json:"timeframe" swaggertype:"string" example:"month"`
	Series     []Point         `json:"series"`
	Categories []CategoryTotal `json:"categories"`
}

// Compute derives every statistic from already aggregated buckets. now anchors
// the weekly series.
func Compute(buckets []models.MonthlyBucket, tf TimeFrame, now time.Time) Stats {
	return Stats{
		Summary:    Summarize(buckets),
		TimeFrame:  tf,
		Series:     Series(buckets, tf, now),
		Categories: ByCategory(buckets),
	}
}

// Summarize computes total, mean per bucket, the highest bucket and the trend.
func Summarize(buckets []models.MonthlyBucket) Summary {
	s := Summary{
		Total:   decimal.Zero,
		Average: decimal.Zero,
		Highest: decimal.Zero,
		Trend:   decimal.Zero,
	}
	if len(buckets) == 0 {
		return s
	}

	var highest *models.MonthlyBucket
	total := decimal.Zero
	for i := range buckets {
		total = total.Add(buckets[i].TotalExpenses)
		if highest == nil || buckets[i].TotalExpenses.GreaterThan(highest.TotalExpenses) {
			highest = &buckets[i]
		}
	}

	s.Total = total.Round(2)
	s.Average = total.Div(decimal.NewFromInt(int64(len(buckets)))).Round(2)
	s.Highest = highest.TotalExpenses.Round(2)
	s.HighestMonth = highest.Month
	s.HighestYear = highest.Year
	s.HighestMonthName = monthName(highest.Month)
	s.Trend = Trend(buckets)
	return s
}

// Trend is the percentage change between the two most recently dated buckets,
// rounded to one decimal. It is zero with fewer than two buckets.
func Trend(buckets []models.MonthlyBucket) decimal.Decimal {
	if len(buckets) < 2 {
		return decimal.Zero
	}
	recent := make([]models.MonthlyBucket, len(buckets))
	copy(recent, buckets)
	sort.SliceStable(recent, func(i, j int) bool {
		return before(recent[j], recent[i])
	})

	latest, previous := recent[0].TotalExpenses, recent[1].TotalExpenses
	if previous.IsZero() {
		return decimal.Zero
	}
	return latest.Sub(previous).Div(previous).Mul(hundred).Round(1)
}

// ByCategory regroups every transaction of every bucket by category and sums
// the amounts. Categories keep the order in which they first appear.
func ByCategory(buckets []models.MonthlyBucket) []CategoryTotal {
	index := make(map[int64]int)
	out := make([]CategoryTotal, 0)
	for _, b := range buckets {
		for _, t := range b.Transactions {
			i, ok := index[t.CategoryID]
			if !ok {
				i = len(out)
				index[t.CategoryID] = i
				out = append(out, CategoryTotal{CategoryID: t.CategoryID, Amount: decimal.Zero})
			}
			out[i].Amount = out[i].Amount.Add(t.Amount)
			out[i].Count++
		}
	}
	for i := range out {
		out[i].Amount = out[i].Amount.Round(2)
	}
	return out
}

// Series buckets the data for a chart.
func Series(buckets []models.MonthlyBucket, tf TimeFrame, now time.Time) []Point {
	switch tf {
	case Quarterly:
		return quarters(buckets)
	case Weekly:
		return ApproximateWeeks(buckets, now)
	default:
		return months(buckets)
	}
}

func months(buckets []models.MonthlyBucket) []Point {
	points := make([]Point, 0, len(buckets))
	for _, b := range buckets {
		period := shortMonthName(b.Month)
		if b.Year != 0 {
			period = fmt.Sprintf("%s %d", period, b.Year)
		}
		points = append(points, Point{
			Period:        period,
			TotalExpenses: b.TotalExpenses.Round(2),
			Count:         len(b.Transactions),
		})
	}
	return points
}

func quarters(buckets []models.MonthlyBucket) []Point {
	index := make(map[string]int)
	points := make([]Point, 0)
	for _, b := range buckets {
		period := fmt.Sprintf("Q%d", (b.Month+2)/3)
		if b.Year != 0 {
			period = fmt.Sprintf("%s %d", period, b.Year)
		}
		i, ok := index[period]
		if !ok {
			i = len(points)
			index[period] = i
			points = append(points, Point{Period: period, TotalExpenses: decimal.Zero})
		}
		points[i].TotalExpenses = points[i].TotalExpenses.Add(b.TotalExpenses)
		points[i].Count += len(b.Transactions)
	}
	for i := range points {
		points[i].TotalExpenses = points[i].TotalExpenses.Round(2)
	}
	return points
}

// ApproximateWeeks estimates the last four weeks from monthly totals. It is a
// heuristic, not a per-week aggregation: each bucket whose month, placed in
// the current year, is within one whole month of a week's start contributes a
// quarter of its total to that week, and the count is estimated as total/100.
// Points run from the oldest week ("Week 4") to the current one ("Week 1").
func ApproximateWeeks(buckets []models.MonthlyBucket, now time.Time) []Point {
	points := make([]Point, 4)
	four := decimal.NewFromInt(4)
	for i := 0; i < 4; i++ {
		weekStart := startOfWeek(now.AddDate(0, 0, -7*i))
		total := decimal.Zero
		for _, b := range buckets {
			if wholeMonthsBetween(monthInYearOf(now, b.Month), weekStart) <= 1 {
				total = total.Add(b.TotalExpenses.Div(four))
			}
		}
		total = total.Round(2)
		points[3-i] = Point{
			Period:        fmt.Sprintf("Week %d", i+1),
			TotalExpenses: total,
			Count:         int(total.Div(hundred).Round(0).IntPart()),
		}
	}
	return points
}

func startOfWeek(t time.Time) time.Time {
	d := t.AddDate(0, 0, -int(t.Weekday()))
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
}

// monthInYearOf moves now to the given month, clamping the day to the month's length.
func monthInYearOf(now time.Time, month int) time.Time {
	day := now.Day()
	if last := daysIn(now.Year(), time.Month(month)); day > last {
		day = last
	}
	return time.Date(now.Year(), time.Month(month), day,
		now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), now.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// wholeMonthsBetween returns the absolute number of complete months between a and b.
func wholeMonthsBetween(a, b time.Time) int {
	if a.After(b) {
		a, b = b, a
	}
	n := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if n > 0 && a.AddDate(0, n, 0).After(b) {
		n--
	}
	return n
}

func monthName(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return time.Month(m).String()
}

func shortMonthName(m int) string {
	name := monthName(m)
	if len(name) < 3 {
		return name
	}
	return name[:3]
}
