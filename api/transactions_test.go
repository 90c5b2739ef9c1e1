package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nemopss/expense-tracker/backend/events"
	"github.com/nemopss/expense-tracker/backend/models"
	"github.com/nemopss/expense-tracker/backend/report"
)

func TestCreateTransaction(t *testing.T) {
	env := setupTestHandler(t)
	category := env.createCategory(t, env.user.ID, "food")

	w := env.do(t, http.MethodPost, "/transaction", env.token, map[string]any{
		"amount":      100.5,
		"description": "Groceries",
		"date":        "2024-01-05T10:30:00.000Z",
		"category_id": category.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	created := decodeData[models.Transaction](t, w)
	require.NotZero(t, created.ID)
	require.Equal(t, env.user.ID, created.UserID)
	requireDecimal(t, "100.5", created.Amount)
	require.Equal(t, "2024-01-05", created.Date.String())
	require.Contains(t, w.Body.String(), `"amount":100.5`)
	require.Contains(t, w.Body.String(), `"date":"2024-01-05"`)

	w = env.do(t, http.MethodGet, "/transaction/"+itoa(created.ID), env.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Groceries", decodeData[models.Transaction](t, w).Description)

	published := env.events.Events()
	require.Len(t, published, 1)
	require.Equal(t, events.Created, published[0].Type)
	require.Equal(t, events.EntityTransaction, published[0].Entity)
	require.Equal(t, created.ID, published[0].ID)
	require.Equal(t, env.user.ID, published[0].UserID)
}

func TestCreateTransactionValidation(t *testing.T) {
	env := setupTestHandler(t)
	category := env.createCategory(t, env.user.ID, "food")
	other, _ := env.newUser(t, "jane@example.com")
	foreign := env.createCategory(t, other.ID, "theirs")

	valid := func(overrides map[string]any) map[string]any {
		body := map[string]any{
			"amount":      42,
			"description": "Lunch",
			"date":        "2024-02-01",
			"category_id": category.ID,
		}
		for k, v := range overrides {
			if v == nil {
				delete(body, k)
				continue
			}
			body[k] = v
		}
		return body
	}

	tests := []struct {
		name    string
		body    any
		wantErr string
	}{
		{name: "missing category", body: valid(map[string]any{"category_id": nil}), wantErr: "category_id is required"},
		{name: "negative category", body: valid(map[string]any{"category_id": -3}), wantErr: "Invalid category_id"},
		{name: "unknown category", body: valid(map[string]any{"category_id": category.ID + 100}), wantErr: "Invalid category_id"},
		{name: "foreign category", body: valid(map[string]any{"category_id": foreign.ID}), wantErr: "Invalid category_id"},
		{name: "category as string", body: valid(map[string]any{"category_id": "abc"}), wantErr: "Invalid category_id"},
		{name: "fractional category", body: valid(map[string]any{"category_id": 1.5}), wantErr: "Invalid category_id"},
		{name: "missing amount", body: valid(map[string]any{"amount": nil}), wantErr: "amount must be a positive number"},
		{name: "zero amount", body: valid(map[string]any{"amount": 0}), wantErr: "amount must be a positive number"},
		{name: "negative amount", body: valid(map[string]any{"amount": -5}), wantErr: "amount must be a positive number"},
		{name: "missing description", body: valid(map[string]any{"description": nil}), wantErr: "description is required"},
		{name: "missing date", body: valid(map[string]any{"date": nil}), wantErr: "date is required"},
		{name: "malformed date", body: valid(map[string]any{"date": "yesterday"}), wantErr: "invalid request body"},
		{name: "malformed amount", body: valid(map[string]any{"amount": "a lot"}), wantErr: "invalid request body"},
		{name: "not json", body: "amount=42", wantErr: "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/transaction", env.token, tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			require.Contains(t, decodeError(t, w), tt.wantErr)
		})
	}

	stored, err := env.storage.ListAllTransactions(context.Background(), env.user.ID)
	require.NoError(t, err)
	require.Empty(t, stored)
	require.Empty(t, env.events.Events())
}

func TestCreateTransactionKeepsExactAmount(t *testing.T) {
	env := setupTestHandler(t)
	category := env.createCategory(t, env.user.ID, "savings")

	w := env.do(t, http.MethodPost, "/transaction", env.token,
		`{"amount":12345678901234567.89,"description":"Deposit","date":"2024-03-01","category_id":`+itoa(category.ID)+`}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeData[models.Transaction](t, w)
	require.Equal(t, "12345678901234567.89", created.Amount.String())

	w = env.do(t, http.MethodPost, "/transaction", env.token,
		`{"amount":0.11,"description":"Interest","date":"2024-03-02","category_id":`+itoa(category.ID)+`}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodGet, "/transaction/"+itoa(created.ID), env.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"amount":12345678901234567.89`)

	w = env.do(t, http.MethodGet, "/transaction", env.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"totalExpenses":12345678901234568`)
	buckets := decodeData[[]models.MonthlyBucket](t, w)
	require.Len(t, buckets, 1)
	require.Equal(t, "12345678901234568", buckets[0].TotalExpenses.String())
}

func TestGetTransactionsAggregation(t *testing.T) {
	env := setupTestHandler(t)
	category := env.createCategory(t, env.user.ID, "food")
	env.createTransaction(t, env.user.ID, category.ID, "100", models.NewDate(2024, time.January, 5))
	env.createTransaction(t, env.user.ID, category.ID, "50", models.NewDate(2024, time.January, 20))
	env.createTransaction(t, env.user.ID, category.ID, "30", models.NewDate(2024, time.February, 1))

	w := env.do(t, http.MethodGet, "/transaction", env.token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	buckets := decodeData[[]models.MonthlyBucket](t, w)
	require.Len(t, buckets, 2)
	require.Equal(t, 1, buckets[0].Month)
	requireDecimal(t, "150", buckets[0].TotalExpenses)
	require.Len(t, buckets[0].Transactions, 2)
	require.Equal(t, 2, buckets[1].Month)
	requireDecimal(t, "30", buckets[1].TotalExpenses)
	require.Len(t, buckets[1].Transactions, 1)
	require.NotContains(t, w.Body.String(), `"year"`)
}

func TestGetTransactionsEmpty(t *testing.T) {
	env := setupTestHandler(t)

	w := env.do(t, http.MethodGet, "/transaction", env.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"data":[]}`, w.Body.String())
}

func TestGetTransactionsGrouping(t *testing.T) {
	env := setupTestHandler(t)
	category := env.createCategory(t, env.user.ID, "food")
	env.createTransaction(t, env.user.ID, category.ID, "10", models.NewDate(2023, time.March, 1))
	env.createTransaction(t, env.user.ID, category.ID, "20", models.NewDate(2024, time.March, 1))

	w := env.do(t, http.MethodGet, "/transaction", env.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	merged := decodeData[[]models.MonthlyBucket](t, w)
	require.Len(t, merged, 1)
	requireDecimal(t, "30", merged[0].TotalExpenses)

	w = env.do(t, http.MethodGet, "/transaction?group=year_month", env.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	split := decodeData[[]models.MonthlyBucket](t, w)
	require.Len(t, split, 2)
	require.Equal(t, 2023, split[0].Year)
	require.Equal(t, 2024, split[1].Year)

	w = env.do(t, http.MethodGet, "/transaction?group=day", env.token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAggregationIsScopedToOwner(t *testing.T) {
	env := setupTestHandler(t)
	other, otherToken := env.newUser(t, "jane@example.com")
	mine := env.createCategory(t, env.user.ID, "food")
	theirs := env.createCategory(t, other.ID, "food")
	tx := env.createTransaction(t, env.user.ID, mine.ID, "10", models.NewDate(2024, time.May, 1))
	env.createTransaction(t, other.ID, theirs.ID, "99", models.NewDate(2024, time.May, 2))

	w := env.do(t, http.MethodGet, "/transaction", env.token, nil)
	buckets := decodeData[[]models.MonthlyBucket](t, w)
	require.Len(t, buckets, 1)
	requireDecimal(t, "10", buckets[0].TotalExpenses)

	path := "/transaction/" + itoa(tx.ID)
	w = env.do(t, http.MethodGet, path, otherToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodPatch, path, otherToken, map[string]any{"amount": 1})
	require.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodDelete, path, otherToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	fetched, err := env.storage.GetTransaction(context.Background(), tx.ID, env.user.ID)
	require.NoError(t, err)
	requireDecimal(t, "10", fetched.Amount)
}

func TestDeleteTransactionRemovesFromAggregation(t *testing.T) {
	env := setupTestHandler(t)
	category := env.createCategory(t, env.user.ID, "food")
	keep := env.createTransaction(t, env.user.ID, category.ID, "100", models.NewDate(2024, time.January, 5))
	drop := env.createTransaction(t, env.user.ID, category.ID, "30", models.NewDate(2024, time.February, 1))

	w := env.do(t, http.MethodDelete, "/transaction/"+itoa(drop.ID), env.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, drop.ID, decodeData[models.DeletedResponse](t, w).ID)

	w = env.do(t, http.MethodGet, "/transaction", env.token, nil)
	buckets := decodeData[[]models.MonthlyBucket](t, w)
	require.Len(t, buckets, 1)
	require.Equal(t, keep.ID, buckets[0].Transactions[0].ID)

	w = env.do(t, http.MethodDelete, "/transaction/"+itoa(drop.ID), env.token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteCategoryKeepsTransactions(t *testing.T) {
	env := setupTestHandler(t)
	category := env.createCategory(t, env.user.ID, "food")
	tx := env.createTransaction(t, env.user.ID, category.ID, "25", models.NewDate(2024, time.April, 9))

	w := env.do(t, http.MethodDelete, "/category/"+itoa(category.ID), env.token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/transaction/"+itoa(tx.ID), env.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, category.ID, decodeData[models.Transaction](t, w).CategoryID)

	w = env.do(t, http.MethodGet, "/transaction", env.token, nil)
	buckets := decodeData[[]models.MonthlyBucket](t, w)
	require.Len(t, buckets, 1)
	requireDecimal(t, "25", buckets[0].TotalExpenses)

	// a dangling reference survives unrelated edits
	w = env.do(t, http.MethodPatch, "/transaction/"+itoa(tx.ID), env.token, map[string]any{"description": "still here"})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestPatchTransaction(t *testing.T) {
	env := setupTestHandler(t)
	food := env.createCategory(t, env.user.ID, "food")
	rent := env.createCategory(t, env.user.ID, "rent")
	other, _ := env.newUser(t, "jane@example.com")
	foreign := env.createCategory(t, other.ID, "theirs")
	tx := env.createTransaction(t, env.user.ID, food.ID, "100", models.NewDate(2024, time.January, 5))
	path := "/transaction/" + itoa(tx.ID)

	w := env.do(t, http.MethodPatch, path, env.token, map[string]any{"amount": 120.25, "category_id": rent.ID})
	require.Equal(t, http.StatusOK, w.Code)
	patched := decodeData[models.Transaction](t, w)
	requireDecimal(t, "120.25", patched.Amount)
	require.Equal(t, rent.ID, patched.CategoryID)
	require.Equal(t, "purchase", patched.Description)
	require.Equal(t, "2024-01-05", patched.Date.String())

	w = env.do(t, http.MethodPatch, path, env.token, map[string]any{"category_id": foreign.ID})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Invalid category_id", decodeError(t, w))

	w = env.do(t, http.MethodPatch, path, env.token, map[string]any{"category_id": "abc"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Invalid category_id", decodeError(t, w))

	w = env.do(t, http.MethodPatch, path, env.token, map[string]any{"amount": -1})
	require.Equal(t, http.StatusBadRequest, w.Code)

	stored, err := env.storage.GetTransaction(context.Background(), tx.ID, env.user.ID)
	require.NoError(t, err)
	requireDecimal(t, "120.25", stored.Amount)
	require.Equal(t, rent.ID, stored.CategoryID)

	w = env.do(t, http.MethodPatch, "/transaction/99999", env.token, map[string]any{"amount": 1})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateTransaction(t *testing.T) {
	env := setupTestHandler(t)
	food := env.createCategory(t, env.user.ID, "food")
	tx := env.createTransaction(t, env.user.ID, food.ID, "100", models.NewDate(2024, time.January, 5))
	path := "/transaction/" + itoa(tx.ID)

	w := env.do(t, http.MethodPut, path, env.token, map[string]any{
		"amount":      75,
		"description": "Dinner",
		"date":        "2024-03-02",
		"category_id": food.ID,
	})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeData[models.Transaction](t, w)
	require.Equal(t, tx.ID, updated.ID)
	require.Equal(t, env.user.ID, updated.UserID)
	require.Equal(t, "Dinner", updated.Description)

	// a full replacement needs every field
	w = env.do(t, http.MethodPut, path, env.token, map[string]any{"amount": 75, "category_id": food.ID})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "description is required", decodeError(t, w))

	w = env.do(t, http.MethodGet, "/transaction", env.token, nil)
	buckets := decodeData[[]models.MonthlyBucket](t, w)
	require.Len(t, buckets, 1)
	require.Equal(t, 3, buckets[0].Month)
	requireDecimal(t, "75", buckets[0].TotalExpenses)
}

func TestListTransactions(t *testing.T) {
	env := setupTestHandler(t)
	food := env.createCategory(t, env.user.ID, "food")
	rent := env.createCategory(t, env.user.ID, "rent")
	env.createTransaction(t, env.user.ID, food.ID, "10", models.NewDate(2024, time.January, 1))
	env.createTransaction(t, env.user.ID, food.ID, "200", models.NewDate(2024, time.February, 1))
	env.createTransaction(t, env.user.ID, rent.ID, "900", models.NewDate(2024, time.March, 1))

	list := func(query string) models.ListTransactionsResponse {
		t.Helper()
		w := env.do(t, http.MethodGet, "/transaction/list"+query, env.token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return decodeData[models.ListTransactionsResponse](t, w)
	}

	all := list("")
	require.Equal(t, 3, all.Total)
	require.Equal(t, 1, all.Page)
	require.Equal(t, 20, all.Limit)
	require.Len(t, all.Transactions, 3)

	require.Len(t, list("?category_id="+itoa(food.ID)).Transactions, 2)
	require.Len(t, list("?min_amount=150").Transactions, 2)
	require.Len(t, list("?max_amount=200").Transactions, 2)
	require.Len(t, list("?min_amount=100&max_amount=500").Transactions, 1)
	require.Len(t, list("?from=2024-02-01").Transactions, 2)
	require.Len(t, list("?from=2024-01-15&to=2024-02-15").Transactions, 1)

	desc := list("?sort=desc")
	require.Equal(t, "2024-03-01", desc.Transactions[0].Date.String())
	require.Equal(t, "2024-01-01", desc.Transactions[2].Date.String())

	page := list("?limit=2&page=2")
	require.Equal(t, 3, page.Total)
	require.Len(t, page.Transactions, 1)
	require.Equal(t, "2024-03-01", page.Transactions[0].Date.String())

	for _, query := range []string{
		"?sort=sideways",
		"?min_amount=lots",
		"?category_id=abc",
		"?from=01/02/2024",
		"?page=0",
		"?limit=-5",
	} {
		w := env.do(t, http.MethodGet, "/transaction/list"+query, env.token, nil)
		require.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}

func TestGetStats(t *testing.T) {
	env := setupTestHandler(t)
	env.handler.now = func() time.Time { return time.Date(2024, time.March, 17, 0, 0, 0, 0, time.UTC) }

	food := env.createCategory(t, env.user.ID, "food")
	rent := env.createCategory(t, env.user.ID, "rent")
	env.createTransaction(t, env.user.ID, food.ID, "100", models.NewDate(2024, time.January, 5))
	env.createTransaction(t, env.user.ID, food.ID, "50", models.NewDate(2024, time.January, 20))
	env.createTransaction(t, env.user.ID, rent.ID, "30", models.NewDate(2024, time.February, 1))

	w := env.do(t, http.MethodGet, "/transaction/stats", env.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decodeData[report.Stats](t, w)

	requireDecimal(t, "180", stats.Summary.Total)
	requireDecimal(t, "90", stats.Summary.Average)
	requireDecimal(t, "150", stats.Summary.Highest)
	require.Equal(t, 1, stats.Summary.HighestMonth)
	require.Equal(t, "January", stats.Summary.HighestMonthName)
	requireDecimal(t, "-80", stats.Summary.Trend)

	require.Equal(t, report.Monthly, stats.TimeFrame)
	require.Len(t, stats.Series, 2)
	require.Equal(t, "Jan", stats.Series[0].Period)
	require.Equal(t, 2, stats.Series[0].Count)

	require.Len(t, stats.Categories, 2)
	require.Equal(t, "food", stats.Categories[0].Label)
	requireDecimal(t, "150", stats.Categories[0].Amount)
	require.Equal(t, 2, stats.Categories[0].Count)
	require.Equal(t, "rent", stats.Categories[1].Label)

	w = env.do(t, http.MethodGet, "/transaction/stats?timeframe=year", env.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	quarterly := decodeData[report.Stats](t, w)
	require.Len(t, quarterly.Series, 1)
	require.Equal(t, "Q1", quarterly.Series[0].Period)
	requireDecimal(t, "180", quarterly.Series[0].TotalExpenses)

	w = env.do(t, http.MethodGet, "/transaction/stats?timeframe=week", env.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	weekly := decodeData[report.Stats](t, w)
	require.Len(t, weekly.Series, 4)
	require.Equal(t, "Week 4", weekly.Series[0].Period)
	require.Equal(t, "Week 1", weekly.Series[3].Period)

	w = env.do(t, http.MethodGet, "/transaction/stats?timeframe=decade", env.token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetStatsDeletedCategory(t *testing.T) {
	env := setupTestHandler(t)
	food := env.createCategory(t, env.user.ID, "food")
	env.createTransaction(t, env.user.ID, food.ID, "10", models.NewDate(2024, time.June, 1))
	require.NoError(t, env.storage.DeleteCategory(context.Background(), food.ID, env.user.ID))

	w := env.do(t, http.MethodGet, "/transaction/stats", env.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decodeData[report.Stats](t, w)
	require.Len(t, stats.Categories, 1)
	require.Equal(t, food.ID, stats.Categories[0].CategoryID)
	require.Empty(t, stats.Categories[0].Label)
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	env := setupTestHandler(t)
	env.events.Err = errors.New("broker down")
	category := env.createCategory(t, env.user.ID, "food")

	w := env.do(t, http.MethodPost, "/transaction", env.token, map[string]any{
		"amount":      5,
		"description": "Coffee",
		"date":        "2024-01-02",
		"category_id": category.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	stored, err := env.storage.ListAllTransactions(context.Background(), env.user.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
}
