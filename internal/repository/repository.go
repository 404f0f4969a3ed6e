// Package repository declares the persistence contracts used by the service
// layer. Implementations live in the mongodb (production) and sqlite
// (local development, tests) subpackages.
package repository

import (
	"context"
	"encoding/hex"

	"github.com/sakif/jobpost-server/internal/apperror"
	"github.com/sakif/jobpost-server/internal/model"
	"github.com/sakif/jobpost-server/internal/query"
)

// JobRepository stores documents of the jobs collection.
//
// Missing documents are reported as apperror.ErrNotFound; malformed ids as
// apperror.ErrValidation.
type JobRepository interface {
	Create(ctx context.Context, job *model.Job) error
	GetByID(ctx context.Context, id string) (*model.Job, error)
	List(ctx context.Context) ([]model.Job, error)
	ListByBuyer(ctx context.Context, email string) ([]model.Job, error)
	// Upsert replaces the job's fields, inserting it under job.ID when absent.
	Upsert(ctx context.Context, job *model.Job) error
	Delete(ctx context.Context, id string) error
	Find(ctx context.Context, page query.JobPage) ([]model.Job, error)
	Count(ctx context.Context, filter query.JobFilter) (int64, error)
}

// BidRepository stores documents of the bids collection.
//
// Create must reject a second bid for the same (email, jobId) pair with
// apperror.ErrDuplicateBid, even when two inserts race.
type BidRepository interface {
	Create(ctx context.Context, bid *model.Bid) error
	Exists(ctx context.Context, email, jobID string) (bool, error)
	ListByBidder(ctx context.Context, email string) ([]model.Bid, error)
	ListByBuyer(ctx context.Context, email string) ([]model.Bid, error)
	UpdateStatus(ctx context.Context, id, status string) (*model.Bid, error)
}

// Store is the single persistence handle opened at startup and shared by all
// requests.
type Store interface {
	Jobs() JobRepository
	Bids() BidRepository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// ValidateID checks that id has the 12-byte object id shape (24 hex chars)
// used by both backends.
func ValidateID(resource, id string) error {
	if len(id) != 24 {
		return apperror.ValidationFailed("id", resource+" id must be a 24 character hex string")
	}
	if _, err := hex.DecodeString(id); err != nil {
		return apperror.ValidationFailed("id", resource+" id must be a 24 character hex string")
	}
	return nil
}
