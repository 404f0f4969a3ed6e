// Package service contains the business logic layer of the application.
//
// THE THREE LAYERS:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces ownership, orchestrates
//	Repository (data layer)  → reads/writes the jobs and bids collections
//
// Services never see an *http.Request. The handler reads the authenticated
// auth.Identity from the request context once and passes it in as a plain
// value, so every rule that depends on "who is asking" is visible in the
// method signature and testable with a struct literal.
//
// THE IDENTITY GUARD:
// Methods that list a user's own data (jobs posted by a buyer, bids placed by
// a bidder, bid requests received by a buyer) take the route email and call
// auth.Guard before anything else. A mismatch returns apperror.ErrForbidden
// and the repository is never touched.
//
// DEPENDENCY INJECTION:
// Services take repository interfaces, not a concrete store. main.go decides
// between MongoDB and SQLite; tests pass hand-written mocks.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/jobpost-server/internal/apperror"
	"github.com/sakif/jobpost-server/internal/auth"
	"github.com/sakif/jobpost-server/internal/model"
	"github.com/sakif/jobpost-server/internal/query"
	"github.com/sakif/jobpost-server/internal/repository"
)

// JobInput is the allow-list of fields a client may set on a job.
// Anything else in the request body (an _id, created_at, ...) is ignored.
type JobInput struct {
	Title       string      `json:"job_title"   validate:"required,max=200"`
	Deadline    time.Time   `json:"deadline"    validate:"required"`
	Category    string      `json:"category"    validate:"required,max=100"`
	MinPrice    float64     `json:"min_price"   validate:"gte=0"`
	MaxPrice    float64     `json:"max_price"   validate:"gte=0,gtefield=MinPrice"`
	Description string      `json:"description" validate:"max=5000"`
	Buyer       model.Buyer `json:"buyer"`
}

func (in *JobInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)
	in.Buyer.Email = strings.TrimSpace(in.Buyer.Email)
	in.Buyer.Name = strings.TrimSpace(in.Buyer.Name)
	in.Deadline = in.Deadline.UTC()
}

func (in JobInput) apply(j *model.Job) {
	j.Title = in.Title
	j.Deadline = in.Deadline
	j.Category = in.Category
	j.MinPrice = in.MinPrice
	j.MaxPrice = in.MaxPrice
	j.Description = in.Description
	j.Buyer = in.Buyer
}

// JobService handles business logic for job listings.
type JobService struct {
	jobs     repository.JobRepository
	validate *Validator
	logger   *slog.Logger
}

// NewJobService creates a JobService.
func NewJobService(jobs repository.JobRepository, validate *Validator, logger *slog.Logger) *JobService {
	return &JobService{
		jobs:     jobs,
		validate: validate,
		logger:   logger,
	}
}

// List returns every job, unfiltered and unpaginated.
func (s *JobService) List(ctx context.Context) ([]model.Job, error) {
	jobs, err := s.jobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/job: listing jobs: %w", err)
	}
	return jobs, nil
}

// Get returns a single job. Unknown ids are apperror.ErrNotFound.
func (s *JobService) Get(ctx context.Context, id string) (*model.Job, error) {
	if err := repository.ValidateID("job", id); err != nil {
		return nil, err
	}
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/job: getting job %s: %w", id, err)
	}
	return job, nil
}

// ListByBuyer returns the jobs posted by email. The caller must be email.
func (s *JobService) ListByBuyer(ctx context.Context, id auth.Identity, email string) ([]model.Job, error) {
	if err := auth.Guard(id, email); err != nil {
		return nil, err
	}
	jobs, err := s.jobs.ListByBuyer(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("service/job: listing jobs of %s: %w", email, err)
	}
	return jobs, nil
}

// Create validates and stores a new job.
func (s *JobService) Create(ctx context.Context, in JobInput) (*model.Job, error) {
	in.normalize()
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	job := &model.Job{}
	in.apply(job)
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("service/job: creating job: %w", err)
	}

	s.logger.Info("job created",
		slog.String("jobID", job.ID),
		slog.String("buyer", job.Buyer.Email),
	)
	return job, nil
}

// Update replaces the fields of job id, creating it when it does not exist.
//
// OWNERSHIP:
// An existing job may only be changed by its buyer. The buyer email is always
// forced to the caller, so a PUT can neither hand a job to someone else nor
// create a job in another user's name.
func (s *JobService) Update(ctx context.Context, id auth.Identity, jobID string, in JobInput) (*model.Job, error) {
	if err := repository.ValidateID("job", jobID); err != nil {
		return nil, err
	}
	in.Buyer.Email = id.Email
	in.normalize()
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	job := &model.Job{ID: jobID}
	existing, err := s.jobs.GetByID(ctx, jobID)
	switch {
	case err == nil:
		if !existing.OwnedBy(id.Email) {
			return nil, apperror.Forbidden("forbidden access")
		}
		job.CreatedAt = existing.CreatedAt
	case errors.Is(err, apperror.ErrNotFound):
		// upsert
	default:
		return nil, fmt.Errorf("service/job: loading job %s: %w", jobID, err)
	}

	in.apply(job)
	if err := s.jobs.Upsert(ctx, job); err != nil {
		return nil, fmt.Errorf("service/job: upserting job %s: %w", jobID, err)
	}

	s.logger.Info("job updated",
		slog.String("jobID", jobID),
		slog.Bool("created", existing == nil),
	)
	return job, nil
}

// Delete removes job jobID. Only its buyer may delete it.
func (s *JobService) Delete(ctx context.Context, id auth.Identity, jobID string) error {
	if err := repository.ValidateID("job", jobID); err != nil {
		return err
	}

	existing, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("service/job: loading job %s: %w", jobID, err)
	}
	if !existing.OwnedBy(id.Email) {
		return apperror.Forbidden("forbidden access")
	}

	if err := s.jobs.Delete(ctx, jobID); err != nil {
		return fmt.Errorf("service/job: deleting job %s: %w", jobID, err)
	}

	s.logger.Info("job deleted", slog.String("jobID", jobID))
	return nil
}

// Browse returns one page of the filtered, sorted listing.
func (s *JobService) Browse(ctx context.Context, page query.JobPage) ([]model.Job, error) {
	jobs, err := s.jobs.Find(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("service/job: browsing jobs: %w", err)
	}

	s.logger.Debug("jobs browsed",
		slog.String("search", page.Filter.Search),
		slog.String("category", page.Filter.Category),
		slog.String("sort", page.Sort.String()),
		slog.Int64("skip", page.Skip),
		slog.Int64("limit", page.Limit),
		slog.Int("results", len(jobs)),
	)
	return jobs, nil
}

// Count returns how many jobs match filter, ignoring pagination and sort.
func (s *JobService) Count(ctx context.Context, filter query.JobFilter) (int64, error) {
	n, err := s.jobs.Count(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("service/job: counting jobs: %w", err)
	}
	return n, nil
}
