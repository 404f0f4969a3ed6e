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
	"github.com/sakif/jobpost-server/internal/repository"
)

// BidInput is the allow-list of fields a bidder sends. The job's title,
// category and buyer are copied from the stored job, never from the body.
type BidInput struct {
	JobID    string    `json:"jobId"    validate:"required,len=24,hexadecimal"`
	Email    string    `json:"email"    validate:"required,email"`
	Price    float64   `json:"price"    validate:"gt=0"`
	Comment  string    `json:"comment"  validate:"max=2000"`
	Deadline time.Time `json:"deadline" validate:"required"`
}

// StatusInput is the only body PATCH /bid/{id} accepts.
type StatusInput struct {
	Status string `json:"status" validate:"required,max=50"`
}

// BidService handles placing and listing bids.
type BidService struct {
	bids     repository.BidRepository
	jobs     repository.JobRepository
	validate *Validator
	logger   *slog.Logger
}

// NewBidService creates a BidService. It needs the job repository to look up
// the job a bid refers to.
func NewBidService(bids repository.BidRepository, jobs repository.JobRepository, validate *Validator, logger *slog.Logger) *BidService {
	return &BidService{
		bids:     bids,
		jobs:     jobs,
		validate: validate,
		logger:   logger,
	}
}

// Place stores a new bid.
//
// THE DUPLICATE-BID RULE:
// A bidder may hold at most one bid per job. Place checks with Exists first
// so the common case gets the friendly message without an insert attempt.
// The check alone is not enough: two requests can both pass it. The unique
// (email, jobId) index in the store settles that race, and the repository
// turns the losing insert into the same apperror.ErrDuplicateBid.
func (s *BidService) Place(ctx context.Context, in BidInput) (*model.Bid, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Comment = strings.TrimSpace(in.Comment)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	job, err := s.jobs.GetByID(ctx, in.JobID)
	if err != nil {
		return nil, fmt.Errorf("service/bid: loading job %s: %w", in.JobID, err)
	}
	if job.OwnedBy(in.Email) {
		return nil, apperror.ValidationFailed("email", "you cannot bid on your own job")
	}

	exists, err := s.bids.Exists(ctx, in.Email, in.JobID)
	if err != nil {
		return nil, fmt.Errorf("service/bid: checking existing bid: %w", err)
	}
	if exists {
		return nil, apperror.DuplicateBid()
	}

	bid := &model.Bid{
		JobID:    in.JobID,
		JobTitle: job.Title,
		Category: job.Category,
		Email:    in.Email,
		Price:    in.Price,
		Comment:  in.Comment,
		Deadline: in.Deadline.UTC(),
		Status:   model.BidStatusPending,
		Buyer:    job.Buyer,
	}
	if err := s.bids.Create(ctx, bid); err != nil {
		if errors.Is(err, apperror.ErrDuplicateBid) {
			return nil, err
		}
		return nil, fmt.Errorf("service/bid: creating bid: %w", err)
	}

	s.logger.Info("bid placed",
		slog.String("bidID", bid.ID),
		slog.String("jobID", bid.JobID),
		slog.String("bidder", bid.Email),
	)
	return bid, nil
}

// ListByBidder returns the bids placed by email. The caller must be email.
func (s *BidService) ListByBidder(ctx context.Context, id auth.Identity, email string) ([]model.Bid, error) {
	if err := auth.Guard(id, email); err != nil {
		return nil, err
	}
	bids, err := s.bids.ListByBidder(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("service/bid: listing bids of %s: %w", email, err)
	}
	return bids, nil
}

// ListByBuyer returns the bids received on jobs posted by email. The caller
// must be email.
func (s *BidService) ListByBuyer(ctx context.Context, id auth.Identity, email string) ([]model.Bid, error) {
	if err := auth.Guard(id, email); err != nil {
		return nil, err
	}
	bids, err := s.bids.ListByBuyer(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("service/bid: listing bid requests of %s: %w", email, err)
	}
	return bids, nil
}

// UpdateStatus changes only the status of bid id. Transitions are not
// checked; any non-empty status is stored as sent.
func (s *BidService) UpdateStatus(ctx context.Context, id string, in StatusInput) (*model.Bid, error) {
	if err := repository.ValidateID("bid", id); err != nil {
		return nil, err
	}
	in.Status = strings.TrimSpace(in.Status)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	bid, err := s.bids.UpdateStatus(ctx, id, in.Status)
	if err != nil {
		return nil, fmt.Errorf("service/bid: updating bid %s: %w", id, err)
	}

	s.logger.Info("bid status changed",
		slog.String("bidID", id),
		slog.String("status", bid.Status),
		slog.Bool("knownStatus", model.KnownBidStatus(bid.Status)),
	)
	return bid, nil
}
