package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts go over the wire as JSON numbers, the way the UI sends them.
	decimal.MarshalJSONWithoutQuotes = true
}

type Transaction struct {
	ID          int64           `json:"id" example:"1"`
	UserID      int64           `json:"user_id" example:"1"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"number" example:"100.5"`
	Description string          `json:"description" example:"Groceries"`
	Date        Date            `json:"date" swaggertype:"string" example:"2024-01-05"`
	CategoryID  int64           `json:"category_id" example:"1"`
}

// Validate checks the fields a stored transaction must carry.
func (t Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return NewValidationError("amount", "amount must be a positive number")
	}
	if strings.TrimSpace(t.Description) == "" {
		return NewValidationError("description", "description is required")
	}
	if len(t.Description) > MaxDescriptionLength {
		return NewValidationError("description", "description is too long")
	}
	if t.Date.IsZero() {
		return NewValidationError("date", "date is required")
	}
	if t.CategoryID == 0 {
		return NewValidationError("category_id", "category_id is required")
	}
	if t.CategoryID < 0 {
		return NewValidationError("category_id", "Invalid category_id")
	}
	return nil
}
