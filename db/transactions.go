package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nemopss/expense-tracker/backend/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// TransactionFilter narrows ListTransactions. Zero values disable a condition.
type TransactionFilter struct {
	CategoryID int64
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
	From       models.Date
	To         models.Date
	// Sort orders by date: "asc" (default) or "desc".
	Sort  string
	Page  int
	Limit int
}

var ErrInvalidSort = errors.New("sort must be 'asc' or 'desc'")

const transactionColumns = `id, user_id, amount, description, date, category_id`

func scanTransaction(row interface{ Scan(...any) error }, t *models.Transaction) error {
	return row.Scan(&t.ID, &t.UserID, &t.Amount, &t.Description, &t.Date, &t.CategoryID)
}

func (s *Storage) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	query := s.rebind(`INSERT INTO transactions (user_id, amount, description, date, category_id)
		VALUES (?, ?, ?, ?, ?) RETURNING id`)
	err := s.DB.QueryRowContext(ctx, query, t.UserID, t.Amount, t.Description, t.Date, t.CategoryID).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (s *Storage) GetTransaction(ctx context.Context, id, userID int64) (*models.Transaction, error) {
	query := s.rebind(`SELECT ` + transactionColumns + ` FROM transactions WHERE id = ? AND user_id = ?`)
	var t models.Transaction
	err := scanTransaction(s.DB.QueryRowContext(ctx, query, id, userID), &t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &t, nil
}

// ListAllTransactions returns every transaction of the user in date order.
// It feeds the monthly aggregation.
func (s *Storage) ListAllTransactions(ctx context.Context, userID int64) ([]models.Transaction, error) {
	query := s.rebind(`SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = ? ORDER BY date, id`)
	return s.queryTransactions(ctx, query, userID)
}

// ListTransactions returns one page of the user's transactions matching f and
// the number of matches across all pages.
func (s *Storage) ListTransactions(ctx context.Context, userID int64, f TransactionFilter) ([]models.Transaction, int, error) {
	order := "ASC"
	switch strings.ToLower(f.Sort) {
	case "", "asc":
	case "desc":
		order = "DESC"
	default:
		return nil, 0, ErrInvalidSort
	}

	where := []string{"user_id = ?"}
	args := []any{userID}
	if f.CategoryID != 0 {
		where = append(where, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.MinAmount != nil {
		where = append(where, s.amountCondition(">="))
		args = append(args, *f.MinAmount)
	}
	if f.MaxAmount != nil {
		where = append(where, s.amountCondition("<="))
		args = append(args, *f.MaxAmount)
	}
	if !f.From.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, f.To)
	}
	cond := strings.Join(where, " AND ")

	var total int
	countQuery := s.rebind(`SELECT COUNT(*) FROM transactions WHERE ` + cond)
	if err := s.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	page, limit := NormalizePage(f.Page, f.Limit)
	query := s.rebind(`SELECT ` + transactionColumns + ` FROM transactions WHERE ` + cond +
		` ORDER BY date ` + order + `, id ` + order + ` LIMIT ? OFFSET ?`)
	args = append(args, limit, (page-1)*limit)

	transactions, err := s.queryTransactions(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

// amountCondition compares the amount column with a placeholder. SQLite keeps
// amounts as exact decimal text, so both sides are compared as numbers.
func (s *Storage) amountCondition(op string) string {
	if s.driver == SQLite {
		return "CAST(amount AS REAL) " + op + " CAST(? AS REAL)"
	}
	return "amount " + op + " ?"
}

// NormalizePage applies the defaults and bounds ListTransactions uses.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

func (s *Storage) queryTransactions(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		if err := scanTransaction(rows, &t); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return transactions, nil
}

func (s *Storage) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	query := s.rebind(`UPDATE transactions SET amount = ?, description = ?, date = ?, category_id = ?
		WHERE id = ? AND user_id = ?`)
	res, err := s.DB.ExecContext(ctx, query, t.Amount, t.Description, t.Date, t.CategoryID, t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return affected(res)
}

func (s *Storage) DeleteTransaction(ctx context.Context, id, userID int64) error {
	query := s.rebind(`DELETE FROM transactions WHERE id = ? AND user_id = ?`)
	res, err := s.DB.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return affected(res)
}
