package offchain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// TransactionStatus is the settlement state of a course purchase.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "Pending"
	StatusCompleted TransactionStatus = "Completed"
	StatusFailed    TransactionStatus = "Failed"
	StatusRefunded  TransactionStatus = "Refunded"
)

func (s TransactionStatus) valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

// MarketplaceTransaction records a course purchase settled outside the ledger.
type MarketplaceTransaction struct {
	ID              int64             `json:"id"`
	BuyerID         int64             `json:"buyerId"`
	CourseID        int64             `json:"courseId"`
	Amount          int64             `json:"amount"`
	Currency        string            `json:"currency"`
	TransactionHash string            `json:"transactionHash"`
	Status          TransactionStatus `json:"status"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

const transactionColumns = `id, buyer_id, course_id, amount, currency, transaction_hash, status, created_at, updated_at`

func scanTransaction(row scanner) (*MarketplaceTransaction, error) {
	var t MarketplaceTransaction
	var status, createdAt, updatedAt string
	if err := row.Scan(&t.ID, &t.BuyerID, &t.CourseID, &t.Amount, &t.Currency, &t.TransactionHash, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	t.Status = TransactionStatus(status)
	t.CreatedAt = parseStamp("created_at", createdAt)
	t.UpdatedAt = parseStamp("updated_at", updatedAt)
	return &t, nil
}

// ProcessCoursePurchase records a new purchase in Pending state.
func (s *Store) ProcessCoursePurchase(ctx context.Context, buyer, course, amount int64, currency, txHash string) (*MarketplaceTransaction, error) {
	if amount < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrInvalidPurchase)
	}
	currency = strings.TrimSpace(currency)
	if currency == "" {
		return nil, fmt.Errorf("%w: currency is required", ErrInvalidPurchase)
	}
	now := s.stamp()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO marketplace_transactions (buyer_id, course_id, amount, currency, transaction_hash, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		buyer, course, amount, currency, txHash, string(StatusPending), now, now)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	logger.Infof("Purchase %d recorded: buyer %d course %d amount %d %s", id, buyer, course, amount, currency)
	return s.GetTransaction(ctx, id)
}

// GetTransaction loads a single purchase.
func (s *Store) GetTransaction(ctx context.Context, id int64) (*MarketplaceTransaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM marketplace_transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err != nil {
		return nil, noRows(err, fmt.Errorf("%w: %d", ErrTransactionNotFound, id))
	}
	return t, nil
}

// UpdateTransactionStatus moves a purchase to status, which must be one of the
// four known states.
func (s *Store) UpdateTransactionStatus(ctx context.Context, id int64, status TransactionStatus) (*MarketplaceTransaction, error) {
	if !status.valid() {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidStatus, status)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE marketplace_transactions SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), s.stamp(), id)
	if err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	if err := affected(res, fmt.Errorf("%w: %d", ErrTransactionNotFound, id)); err != nil {
		return nil, err
	}
	logger.Infof("Transaction %d status set to %s", id, status)
	return s.GetTransaction(ctx, id)
}

// GetTransactionStatus returns only the status of a purchase.
func (s *Store) GetTransactionStatus(ctx context.Context, id int64) (TransactionStatus, error) {
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT status FROM marketplace_transactions WHERE id = ?`, id).Scan(&status)
	if err != nil {
		return "", noRows(err, fmt.Errorf("%w: %d", ErrTransactionNotFound, id))
	}
	return TransactionStatus(status), nil
}

// ListTransactionsForUser returns a buyer's purchases, oldest first. The result
// is never nil.
func (s *Store) ListTransactionsForUser(ctx context.Context, buyer int64) ([]MarketplaceTransaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM marketplace_transactions WHERE buyer_id = ? ORDER BY id`, buyer)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []MarketplaceTransaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// IssueRefund marks a purchase Refunded.
func (s *Store) IssueRefund(ctx context.Context, id int64) (*MarketplaceTransaction, error) {
	return s.UpdateTransactionStatus(ctx, id, StatusRefunded)
}

func (s *Store) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM marketplace_transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if err := affected(res, fmt.Errorf("%w: %d", ErrTransactionNotFound, id)); err != nil {
		return err
	}
	logger.Infof("Transaction %d deleted", id)
	return nil
}
