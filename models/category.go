package models

import "strings"

type Category struct {
	ID     int64  `json:"id" example:"1"`
	UserID int64  `json:"user_id" example:"1"`
	Label  string `json:"label" example:"Food"`
	Icon   string `json:"icon" example:"🍔"`
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Label) == "" {
		return NewValidationError("label", "label is required")
	}
	if len(c.Label) > MaxLabelLength {
		return NewValidationError("label", "label is too long")
	}
	if strings.TrimSpace(c.Icon) == "" {
		return NewValidationError("icon", "icon is required")
	}
	return nil
}
