package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nemopss/expense-tracker/backend/models"
)

func (s *Storage) CreateCategory(ctx context.Context, c *models.Category) error {
	query := s.rebind(`INSERT INTO categories (user_id, label, icon) VALUES (?, ?, ?) RETURNING id`)
	if err := s.DB.QueryRowContext(ctx, query, c.UserID, c.Label, c.Icon).Scan(&c.ID); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (s *Storage) GetCategories(ctx context.Context, userID int64) ([]models.Category, error) {
	query := s.rebind(`SELECT id, user_id, label, icon FROM categories WHERE user_id = ? ORDER BY id`)
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Label, &c.Icon); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

func (s *Storage) GetCategory(ctx context.Context, id, userID int64) (*models.Category, error) {
	query := s.rebind(`SELECT id, user_id, label, icon FROM categories WHERE id = ? AND user_id = ?`)
	var c models.Category
	err := s.DB.QueryRowContext(ctx, query, id, userID).Scan(&c.ID, &c.UserID, &c.Label, &c.Icon)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// CategoryExists reports whether the user owns a category with the given id.
func (s *Storage) CategoryExists(ctx context.Context, id, userID int64) (bool, error) {
	_, err := s.GetCategory(ctx, id, userID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Storage) UpdateCategory(ctx context.Context, c *models.Category) error {
	query := s.rebind(`UPDATE categories SET label = ?, icon = ? WHERE id = ? AND user_id = ?`)
	res, err := s.DB.ExecContext(ctx, query, c.Label, c.Icon, c.ID, c.UserID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return affected(res)
}

// DeleteCategory removes the category only. Transactions that reference it are kept.
func (s *Storage) DeleteCategory(ctx context.Context, id, userID int64) error {
	query := s.rebind(`DELETE FROM categories WHERE id = ? AND user_id = ?`)
	res, err := s.DB.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return affected(res)
}
