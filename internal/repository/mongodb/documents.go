package mongodb

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/sakif/jobpost-server/internal/model"
)

// jobDocument is the stored shape of a job: the model's fields inlined next
// to a native ObjectID. model.Job.ID is tagged bson:"-" so it never shadows _id.
type jobDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	model.Job `bson:",inline"`
}

type bidDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	model.Bid `bson:",inline"`
}

func (d jobDocument) toModel() model.Job {
	j := d.Job
	j.ID = d.ID.Hex()
	return j
}

func (d bidDocument) toModel() model.Bid {
	b := d.Bid
	b.ID = d.ID.Hex()
	return b
}

func jobsFromDocuments(docs []jobDocument) []model.Job {
	jobs := make([]model.Job, 0, len(docs))
	for _, d := range docs {
		jobs = append(jobs, d.toModel())
	}
	return jobs
}

func bidsFromDocuments(docs []bidDocument) []model.Bid {
	bids := make([]model.Bid, 0, len(docs))
	for _, d := range docs {
		bids = append(bids, d.toModel())
	}
	return bids
}

// jobFields lists the fields a full update replaces. Anything not listed here
// (created_at, unknown keys from older documents) is left alone.
func jobFields(j *model.Job) bson.D {
	return bson.D{
		{Key: "job_title", Value: j.Title},
		{Key: "deadline", Value: j.Deadline},
		{Key: "category", Value: j.Category},
		{Key: "min_price", Value: j.MinPrice},
		{Key: "max_price", Value: j.MaxPrice},
		{Key: "description", Value: j.Description},
		{Key: "buyer", Value: j.Buyer},
		{Key: "updated_at", Value: j.UpdatedAt},
	}
}
