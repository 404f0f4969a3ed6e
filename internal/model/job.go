// Package model defines the documents stored in the jobs and bids collections.
//
// The JSON names match what the web client sends and expects (snake_case for
// most job fields, camelCase jobId on bids, "_id" for identifiers), so the
// structs can be encoded straight into responses.
//
// BSON TAGS:
// The same names are used as document keys in MongoDB. ID is excluded from
// BSON here because the mongo repository stores it as a native ObjectID
// (see repository/mongodb/documents.go) while the rest of the app treats it as
// an opaque string.
package model

import "time"

// Buyer identifies the person who posted a job. Buyer.Email is the owner key:
// GET /jobs/{email} and GET /bid-requests/{email} match on it.
type Buyer struct {
	Email string `json:"email" bson:"email" validate:"required,email"`
	Name  string `json:"name"  bson:"name"  validate:"max=120"`
	Photo string `json:"photo" bson:"photo" validate:"omitempty,url"`
}

// Job is a posted job listing.
type Job struct {
	ID          string    `json:"_id"         bson:"-"`
	Title       string    `json:"job_title"   bson:"job_title"`
	Deadline    time.Time `json:"deadline"    bson:"deadline"`
	Category    string    `json:"category"    bson:"category"`
	MinPrice    float64   `json:"min_price"   bson:"min_price"`
	MaxPrice    float64   `json:"max_price"   bson:"max_price"`
	Description string    `json:"description" bson:"description"`
	Buyer       Buyer     `json:"buyer"       bson:"buyer"`
	CreatedAt   time.Time `json:"created_at"  bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"  bson:"updated_at"`
}

// OwnedBy reports whether email is the job's buyer. Exact match, no case folding.
func (j *Job) OwnedBy(email string) bool {
	return j.Buyer.Email == email
}
