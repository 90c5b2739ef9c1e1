package report

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/nemopss/expense-tracker/backend/models"
)

func tx(id int64, amount string, date models.Date, categoryID int64) models.Transaction {
	return models.Transaction{
		ID:          id,
		UserID:      1,
		Amount:      decimal.RequireFromString(amount),
		Description: "t",
		Date:        date,
		CategoryID:  categoryID,
	}
}

func TestGroupByMonthExample(t *testing.T) {
	txs := []models.Transaction{
		tx(1, "100", models.NewDate(2024, time.January, 5), 1),
		tx(2, "50", models.NewDate(2024, time.January, 20), 1),
		tx(3, "30", models.NewDate(2024, time.February, 1), 2),
	}

	buckets := GroupByMonth(txs)

	require.Len(t, buckets, 2)
	require.Equal(t, 1, buckets[0].Month)
	require.Equal(t, "150", buckets[0].TotalExpenses.String())
	require.Len(t, buckets[0].Transactions, 2)
	require.Equal(t, 2, buckets[1].Month)
	require.Equal(t, "30", buckets[1].TotalExpenses.String())
	require.Len(t, buckets[1].Transactions, 1)
	require.Zero(t, buckets[0].Year)
}

func TestGroupByMonthEmpty(t *testing.T) {
	buckets := GroupByMonth(nil)
	require.NotNil(t, buckets)
	require.Empty(t, buckets)
}

func TestGroupByMonthMergesYears(t *testing.T) {
	txs := []models.Transaction{
		tx(1, "10", models.NewDate(2023, time.March, 1), 1),
		tx(2, "20", models.NewDate(2024, time.March, 1), 1),
	}

	buckets := GroupByMonth(txs)
	require.Len(t, buckets, 1)
	require.Equal(t, "30", buckets[0].TotalExpenses.String())

	split := Group(txs, ByYearMonth)
	require.Len(t, split, 2)
	require.Equal(t, 2023, split[0].Year)
	require.Equal(t, 2024, split[1].Year)
	require.Equal(t, "10", split[0].TotalExpenses.String())
}

func TestGroupByMonthProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		n := rng.Intn(40)
		txs := make([]models.Transaction, 0, n)
		sum := decimal.Zero
		for i := 0; i < n; i++ {
			amount := decimal.New(int64(rng.Intn(100000)+1), -2)
			date := models.NewDate(2020+rng.Intn(4), time.Month(rng.Intn(12)+1), rng.Intn(28)+1)
			txs = append(txs, models.Transaction{ID: int64(i + 1), Amount: amount, Date: date, CategoryID: 1})
			sum = sum.Add(amount)
		}

		buckets := GroupByMonth(txs)

		total := decimal.Zero
		seen := make(map[int64]int)
		for i, b := range buckets {
			require.NotEmpty(t, b.Transactions)
			if i > 0 {
				require.Less(t, buckets[i-1].Month, b.Month)
			}
			bucketSum := decimal.Zero
			for _, tr := range b.Transactions {
				require.Equal(t, b.Month, int(tr.Date.Month()))
				seen[tr.ID]++
				bucketSum = bucketSum.Add(tr.Amount)
			}
			require.True(t, bucketSum.Equal(b.TotalExpenses))
			total = total.Add(b.TotalExpenses)
		}
		require.True(t, sum.Equal(total), "sum %s != total %s", sum, total)
		require.Len(t, seen, n)
		for id, count := range seen {
			require.Equal(t, 1, count, "transaction %d", id)
		}
	}
}

func TestParseGrouping(t *testing.T) {
	g, ok := ParseGrouping("")
	require.True(t, ok)
	require.Equal(t, ByMonth, g)

	g, ok = ParseGrouping("year_month")
	require.True(t, ok)
	require.Equal(t, ByYearMonth, g)

	_, ok = ParseGrouping("day")
	require.False(t, ok)
}
