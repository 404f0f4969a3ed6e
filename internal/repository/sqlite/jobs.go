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
	"github.com/sakif/jobpost-server/internal/query"
	"github.com/sakif/jobpost-server/internal/repository"
)

var _ repository.JobRepository = (*jobRepo)(nil)

type jobRepo struct {
	conn *sql.DB
}

const jobColumns = `id, job_title, category, deadline, min_price, max_price, description,
	buyer_email, buyer_name, buyer_photo, created_at, updated_at`

func scanJob(row scanner) (model.Job, error) {
	var (
		j        model.Job
		deadline int64
	)
	err := row.Scan(
		&j.ID, &j.Title, &j.Category, &deadline, &j.MinPrice, &j.MaxPrice, &j.Description,
		&j.Buyer.Email, &j.Buyer.Name, &j.Buyer.Photo, &j.CreatedAt, &j.UpdatedAt,
	)
	j.Deadline = time.UnixMilli(deadline).UTC()
	return j, err
}

// Create inserts a new job. The id and timestamps are generated here and
// written back into job.
func (r *jobRepo) Create(ctx context.Context, job *model.Job) error {
	job.ID = newID()
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO jobs (id, job_title, title_fold, category, deadline, min_price, max_price,
			description, buyer_email, buyer_name, buyer_photo, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Title, strings.ToLower(job.Title), job.Category, job.Deadline.UnixMilli(),
		job.MinPrice, job.MaxPrice, job.Description,
		job.Buyer.Email, job.Buyer.Name, job.Buyer.Photo, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating job: %w", err)
	}
	return nil
}

func (r *jobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	if err := repository.ValidateID("job", id); err != nil {
		return nil, err
	}

	j, err := scanJob(r.conn.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("job", id)
		}
		return nil, fmt.Errorf("sqlite: getting job %s: %w", id, err)
	}
	return &j, nil
}

func (r *jobRepo) List(ctx context.Context) ([]model.Job, error) {
	return r.query(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY rowid`)
}

func (r *jobRepo) ListByBuyer(ctx context.Context, email string) ([]model.Job, error) {
	return r.query(ctx, `SELECT `+jobColumns+` FROM jobs WHERE buyer_email = ? ORDER BY rowid`, email)
}

// Upsert replaces every field of the job with id job.ID, or inserts it if
// no such row exists. created_at survives an update.
func (r *jobRepo) Upsert(ctx context.Context, job *model.Job) error {
	if err := repository.ValidateID("job", job.ID); err != nil {
		return err
	}

	now := time.Now().UTC()
	job.UpdatedAt = now
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO jobs (id, job_title, title_fold, category, deadline, min_price, max_price,
			description, buyer_email, buyer_name, buyer_photo, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			job_title   = excluded.job_title,
			title_fold  = excluded.title_fold,
			category    = excluded.category,
			deadline    = excluded.deadline,
			min_price   = excluded.min_price,
			max_price   = excluded.max_price,
			description = excluded.description,
			buyer_email = excluded.buyer_email,
			buyer_name  = excluded.buyer_name,
			buyer_photo = excluded.buyer_photo,
			updated_at  = excluded.updated_at`,
		job.ID, job.Title, strings.ToLower(job.Title), job.Category, job.Deadline.UnixMilli(),
		job.MinPrice, job.MaxPrice, job.Description,
		job.Buyer.Email, job.Buyer.Name, job.Buyer.Photo, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting job %s: %w", job.ID, err)
	}
	return nil
}

func (r *jobRepo) Delete(ctx context.Context, id string) error {
	if err := repository.ValidateID("job", id); err != nil {
		return err
	}

	result, err := r.conn.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting job %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("job", id)
	}
	return nil
}

// Find returns one page of the filtered listing.
func (r *jobRepo) Find(ctx context.Context, page query.JobPage) ([]model.Job, error) {
	where, args := jobWhere(page.Filter)
	args = append(args, page.Limit, page.Skip)

	return r.query(ctx,
		`SELECT `+jobColumns+` FROM jobs`+where+jobOrderBy(page.Sort)+` LIMIT ? OFFSET ?`,
		args...)
}

func (r *jobRepo) Count(ctx context.Context, filter query.JobFilter) (int64, error) {
	where, args := jobWhere(filter)

	var n int64
	if err := r.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting jobs: %w", err)
	}
	return n, nil
}

// jobWhere translates a JobFilter into a WHERE clause.
//
// instr() on the folded title is a plain substring test, so characters that
// are special to LIKE ('%', '_') need no escaping.
func jobWhere(f query.JobFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if f.Search != "" {
		clauses = append(clauses, "instr(title_fold, ?) > 0")
		args = append(args, strings.ToLower(f.Search))
	}
	if f.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, f.Category)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// jobOrderBy adds rowid as a tiebreaker so jobs with equal deadlines keep a
// stable position across pages.
func jobOrderBy(s query.SortOrder) string {
	switch s {
	case query.SortAsc:
		return " ORDER BY deadline ASC, rowid ASC"
	case query.SortDesc:
		return " ORDER BY deadline DESC, rowid ASC"
	default:
		return " ORDER BY rowid"
	}
}

func (r *jobRepo) query(ctx context.Context, q string, args ...any) ([]model.Job, error) {
	rows, err := r.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing jobs: %w", err)
	}
	defer rows.Close()

	jobs := []model.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning job row: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating jobs: %w", err)
	}
	return jobs, nil
}
