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
	"github.com/sakif/jobpost-server/internal/query"
	"github.com/sakif/jobpost-server/internal/repository"
)

var _ repository.JobRepository = (*jobRepo)(nil)

type jobRepo struct {
	coll *mongo.Collection
}

func (r *jobRepo) Create(ctx context.Context, job *model.Job) error {
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	doc := jobDocument{ID: bson.NewObjectID(), Job: *job}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongo: creating job: %w", err)
	}

	job.ID = doc.ID.Hex()
	return nil
}

func (r *jobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	oid, err := objectID("job", id)
	if err != nil {
		return nil, err
	}

	var doc jobDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("job", id)
		}
		return nil, fmt.Errorf("mongo: getting job %s: %w", id, err)
	}

	j := doc.toModel()
	return &j, nil
}

func (r *jobRepo) List(ctx context.Context) ([]model.Job, error) {
	return r.find(ctx, bson.D{})
}

func (r *jobRepo) ListByBuyer(ctx context.Context, email string) ([]model.Job, error) {
	return r.find(ctx, bson.D{{Key: "buyer.email", Value: email}})
}

// Upsert $sets the allow-listed job fields and inserts the document when the
// id is unknown. created_at is only written on insert.
func (r *jobRepo) Upsert(ctx context.Context, job *model.Job) error {
	oid, err := objectID("job", job.ID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	job.UpdatedAt = now
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}

	update := bson.D{
		{Key: "$set", Value: jobFields(job)},
		{Key: "$setOnInsert", Value: bson.D{{Key: "created_at", Value: job.CreatedAt}}},
	}
	_, err = r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo: upserting job %s: %w", job.ID, err)
	}
	return nil
}

func (r *jobRepo) Delete(ctx context.Context, id string) error {
	oid, err := objectID("job", id)
	if err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("mongo: deleting job %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound("job", id)
	}
	return nil
}

func (r *jobRepo) Find(ctx context.Context, page query.JobPage) ([]model.Job, error) {
	return r.find(ctx, jobFilter(page.Filter), jobFindOptions(page))
}

func (r *jobRepo) Count(ctx context.Context, filter query.JobFilter) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, jobFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("mongo: counting jobs: %w", err)
	}
	return n, nil
}

func (r *jobRepo) find(ctx context.Context, filter bson.D, opts ...options.Lister[options.FindOptions]) ([]model.Job, error) {
	cur, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("mongo: finding jobs: %w", err)
	}

	var docs []jobDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decoding jobs: %w", err)
	}
	return jobsFromDocuments(docs), nil
}
