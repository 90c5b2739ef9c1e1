// Package report derives the monthly view of an owner's spending and the
// statistics shown next to it.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/nemopss/expense-tracker/backend/models"
)

// Grouping selects the bucket key.
type Grouping string

const (
	// ByMonth keys buckets by month number only, so January 2023 and
	// January 2024 land in the same bucket.
	ByMonth Grouping = "month"
	// ByYearMonth keys buckets by year and month.
	ByYearMonth Grouping = "year_month"
)

// ParseGrouping maps a query value to a Grouping. Empty means ByMonth.
func ParseGrouping(s string) (Grouping, bool) {
	switch Grouping(s) {
	case "", ByMonth:
		return ByMonth, true
	case ByYearMonth:
		return ByYearMonth, true
	}
	return "", false
}

type bucketKey struct {
	year  int
	month int
}

// GroupByMonth groups transactions by the month of their date and sums each
// group. Buckets come back sorted by month ascending and none is empty.
func GroupByMonth(txs []models.Transaction) []models.MonthlyBucket {
	return Group(txs, ByMonth)
}

// Group is GroupByMonth with an explicit key.
func Group(txs []models.Transaction, g Grouping) []models.MonthlyBucket {
	index := make(map[bucketKey]int)
	buckets := make([]models.MonthlyBucket, 0)

	for _, t := range txs {
		k := bucketKey{month: int(t.Date.Month())}
		if g == ByYearMonth {
			k.year = t.Date.Year()
		}
		i, ok := index[k]
		if !ok {
			i = len(buckets)
			index[k] = i
			buckets = append(buckets, models.MonthlyBucket{
				Year:          k.year,
				Month:         k.month,
				TotalExpenses: decimal.Zero,
			})
		}
		buckets[i].Transactions = append(buckets[i].Transactions, t)
		buckets[i].TotalExpenses = buckets[i].TotalExpenses.Add(t.Amount)
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return before(buckets[i], buckets[j])
	})
	return buckets
}

func before(a, b models.MonthlyBucket) bool {
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	return a.Month < b.Month
}
