package models

import "github.com/shopspring/decimal"

// MonthlyBucket groups an owner's transactions by calendar month. It is derived on every read.
type MonthlyBucket struct {
	// Year is only set when grouping by year and month.
	Year          int             `json:"year,omitempty" example:"2024"`
	Month         int             `json:"month" example:"1"`
	Transactions  []Transaction   `json:"transactions"`
	TotalExpenses decimal.Decimal `json:"totalExpenses" swaggertype:"number" example:"150"`
}
