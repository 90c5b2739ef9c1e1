package models

import "github.com/shopspring/decimal"

type CreateTransaction struct {
	Amount      decimal.Decimal `json:"amount" swaggertype:"number" example:"100.5"`
	Description string          `json:"description" example:"Groceries"`
	Date        Date            `json:"date" swaggertype:"string" example:"2024-01-05"`
	CategoryID  int64           `json:"category_id" example:"1"`
}

// Transaction builds the record the payload describes for the given owner.
func (c CreateTransaction) Transaction(userID int64) Transaction {
	return Transaction{
		UserID:      userID,
		Amount:      c.Amount,
		Description: c.Description,
		Date:        c.Date,
		CategoryID:  c.CategoryID,
	}
}

// UpdateTransaction is a partial replacement; nil fields keep their stored value.
type UpdateTransaction struct {
	Amount      *decimal.Decimal `json:"amount,omitempty" swaggertype:"number" example:"120"`
	Description *string          `json:"description,omitempty" example:"Groceries and wine"`
	Date        *Date            `json:"date,omitempty" swaggertype:"string" example:"2024-01-06"`
	CategoryID  *int64           `json:"category_id,omitempty" example:"2"`
}

func (u UpdateTransaction) Apply(t *Transaction) {
	if u.Amount != nil {
		t.Amount = *u.Amount
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Date != nil {
		t.Date = *u.Date
	}
	if u.CategoryID != nil {
		t.CategoryID = *u.CategoryID
	}
}

type CreateCategory struct {
	Label string `json:"label" example:"Food"`
	Icon  string `json:"icon" example:"🍔"`
}

func (c CreateCategory) Category(userID int64) Category {
	return Category{UserID: userID, Label: c.Label, Icon: c.Icon}
}

type UpdateCategory struct {
	Label *string `json:"label,omitempty" example:"Groceries"`
	Icon  *string `json:"icon,omitempty" example:"🛒"`
}

func (u UpdateCategory) Apply(c *Category) {
	if u.Label != nil {
		c.Label = *u.Label
	}
	if u.Icon != nil {
		c.Icon = *u.Icon
	}
}
