package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/jobpost-server/internal/apperror"
	"github.com/sakif/jobpost-server/internal/model"
	"github.com/sakif/jobpost-server/internal/repository"
)

var _ repository.BidRepository = (*bidRepo)(nil)

type bidRepo struct {
	conn *sql.DB
}

const bidColumns = `id, job_id, job_title, category, email, price, comment, deadline, status,
	buyer_email, buyer_name, buyer_photo, created_at`

func scanBid(row scanner) (model.Bid, error) {
	var (
		b        model.Bid
		deadline int64
	)
	err := row.Scan(
		&b.ID, &b.JobID, &b.JobTitle, &b.Category, &b.Email, &b.Price, &b.Comment, &deadline, &b.Status,
		&b.Buyer.Email, &b.Buyer.Name, &b.Buyer.Photo, &b.CreatedAt,
	)
	b.Deadline = time.UnixMilli(deadline).UTC()
	return b, err
}

// Create inserts a bid. A second bid for the same (email, job_id) violates the
// UNIQUE constraint and comes back as apperror.ErrDuplicateBid, which closes
// the window between the service's Exists check and this insert.
func (r *bidRepo) Create(ctx context.Context, bid *model.Bid) error {
	bid.ID = newID()
	bid.CreatedAt = time.Now().UTC()

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO bids (id, job_id, job_title, category, email, price, comment, deadline, status,
			buyer_email, buyer_name, buyer_photo, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bid.ID, bid.JobID, bid.JobTitle, bid.Category, bid.Email, bid.Price, bid.Comment,
		bid.Deadline.UnixMilli(), bid.Status,
		bid.Buyer.Email, bid.Buyer.Name, bid.Buyer.Photo, bid.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.DuplicateBid()
		}
		return fmt.Errorf("sqlite: creating bid: %w", err)
	}
	return nil
}

func (r *bidRepo) Exists(ctx context.Context, email, jobID string) (bool, error) {
	var exists bool
	err := r.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM bids WHERE email = ? AND job_id = ?)`,
		email, jobID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking bid (%s, %s): %w", email, jobID, err)
	}
	return exists, nil
}

func (r *bidRepo) ListByBidder(ctx context.Context, email string) ([]model.Bid, error) {
	return r.query(ctx, `SELECT `+bidColumns+` FROM bids WHERE email = ? ORDER BY rowid`, email)
}

func (r *bidRepo) ListByBuyer(ctx context.Context, email string) ([]model.Bid, error) {
	return r.query(ctx, `SELECT `+bidColumns+` FROM bids WHERE buyer_email = ? ORDER BY rowid`, email)
}

// UpdateStatus sets the status of one bid and returns the updated document.
func (r *bidRepo) UpdateStatus(ctx context.Context, id, status string) (*model.Bid, error) {
	if err := repository.ValidateID("bid", id); err != nil {
		return nil, err
	}

	result, err := r.conn.ExecContext(ctx, `UPDATE bids SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating bid %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return nil, apperror.NotFound("bid", id)
	}

	b, err := scanBid(r.conn.QueryRowContext(ctx, `SELECT `+bidColumns+` FROM bids WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("bid", id)
		}
		return nil, fmt.Errorf("sqlite: reading bid %s: %w", id, err)
	}
	return &b, nil
}

func (r *bidRepo) query(ctx context.Context, q string, args ...any) ([]model.Bid, error) {
	rows, err := r.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing bids: %w", err)
	}
	defer rows.Close()

	bids := []model.Bid{}
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning bid row: %w", err)
		}
		bids = append(bids, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating bids: %w", err)
	}
	return bids, nil
}

// isUniqueViolation recognises SQLite's constraint error text. The driver's
// extended result code would be SQLITE_CONSTRAINT_UNIQUE (2067).
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
