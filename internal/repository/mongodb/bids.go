package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/sakif/jobpost-server/internal/apperror"
	"github.com/sakif/jobpost-server/internal/model"
	"github.com/sakif/jobpost-server/internal/repository"
)

var _ repository.BidRepository = (*bidRepo)(nil)

type bidRepo struct {
	coll *mongo.Collection
}

// Create inserts a bid. A duplicate-key error from the unique
// (email, jobId) index becomes apperror.ErrDuplicateBid.
func (r *bidRepo) Create(ctx context.Context, bid *model.Bid) error {
	bid.CreatedAt = time.Now().UTC()

	doc := bidDocument{ID: bson.NewObjectID(), Bid: *bid}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.DuplicateBid()
		}
		return fmt.Errorf("mongo: creating bid: %w", err)
	}

	bid.ID = doc.ID.Hex()
	return nil
}

func (r *bidRepo) Exists(ctx context.Context, email, jobID string) (bool, error) {
	err := r.coll.FindOne(ctx,
		bson.D{{Key: "email", Value: email}, {Key: "jobId", Value: jobID}},
		options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}}),
	).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return false, nil
	default:
		return false, fmt.Errorf("mongo: checking bid (%s, %s): %w", email, jobID, err)
	}
}

func (r *bidRepo) ListByBidder(ctx context.Context, email string) ([]model.Bid, error) {
	return r.find(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *bidRepo) ListByBuyer(ctx context.Context, email string) ([]model.Bid, error) {
	return r.find(ctx, bson.D{{Key: "buyer.email", Value: email}})
}

// UpdateStatus sets only the status field and returns the document as it is
// after the update.
func (r *bidRepo) UpdateStatus(ctx context.Context, id, status string) (*model.Bid, error) {
	oid, err := objectID("bid", id)
	if err != nil {
		return nil, err
	}

	var doc bidDocument
	err = r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: status}}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("bid", id)
		}
		return nil, fmt.Errorf("mongo: updating bid %s: %w", id, err)
	}

	b := doc.toModel()
	return &b, nil
}

func (r *bidRepo) find(ctx context.Context, filter bson.D) ([]model.Bid, error) {
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("mongo: finding bids: %w", err)
	}

	var docs []bidDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decoding bids: %w", err)
	}
	return bidsFromDocuments(docs), nil
}
