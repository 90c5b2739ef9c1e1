package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nemopss/expense-tracker/backend/models"
)

// CreateUser provisions a user record. Normally the identity provider owns
// this table; the method exists for seeding and tests.
func (s *Storage) CreateUser(ctx context.Context, u *models.User) error {
	query := s.rebind(`INSERT INTO users (email, first_name, last_name) VALUES (?, ?, ?) RETURNING id`)
	if err := s.DB.QueryRowContext(ctx, query, u.Email, u.FirstName, u.LastName).Scan(&u.ID); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser resolves an identity to its user record.
func (s *Storage) GetUser(ctx context.Context, id int64) (*models.User, error) {
	query := s.rebind(`SELECT id, email, first_name, last_name FROM users WHERE id = ?`)
	var u models.User
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
