// Package mongodb implements the repository interfaces on MongoDB, the
// production document store.
//
// CLIENT LIFECYCLE:
// A *mongo.Client is a connection pool that is safe for concurrent use. It is
// created once in Connect, shared by every request through the Store, and
// disconnected on shutdown. No per-request connection setup happens anywhere.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/sakif/jobpost-server/internal/repository"
)

const (
	jobsCollection = "jobs"
	bidsCollection = "bids"
)

var _ repository.Store = (*Store)(nil)

// Store owns the client and the two collection repositories.
type Store struct {
	client *mongo.Client
	jobs   *jobRepo
	bids   *bidRepo
}

// Connect opens the client, pings the primary and makes sure the indexes
// exist. Any failure here is a startup failure.
//
// The Stable API (version 1, strict) is requested so a server upgrade cannot
// silently change the behaviour of the commands used here.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)

	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI))
	if err != nil {
		return nil, fmt.Errorf("mongo: connecting: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: pinging primary: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client: client,
		jobs:   &jobRepo{coll: db.Collection(jobsCollection)},
		bids:   &bidRepo{coll: db.Collection(bidsCollection)},
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return s, nil
}

func (s *Store) Jobs() repository.JobRepository { return s.jobs }

func (s *Store) Bids() repository.BidRepository { return s.bids }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// ensureIndexes creates the indexes the queries rely on. CreateMany is a no-op
// for indexes that already exist with the same definition.
//
// The unique (email, jobId) index is what guarantees one bid per bidder per
// job when two submissions race past the existence check.
func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.bids.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}, {Key: "jobId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_bidder_job"),
		},
		{
			Keys: bson.D{{Key: "buyer.email", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("mongo: creating bid indexes: %w", err)
	}

	_, err = s.jobs.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "buyer.email", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "deadline", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo: creating job indexes: %w", err)
	}

	return nil
}

// objectID parses a hex id after the shared shape check, so malformed ids are
// a validation error rather than a driver error.
func objectID(resource, id string) (bson.ObjectID, error) {
	if err := repository.ValidateID(resource, id); err != nil {
		return bson.ObjectID{}, err
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.ObjectID{}, fmt.Errorf("mongo: parsing %s id %q: %w", resource, id, err)
	}
	return oid, nil
}
