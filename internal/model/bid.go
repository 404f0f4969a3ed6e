package model

import "time"

// Bid statuses used by the web client. Status is free text in storage; these
// are only the defaults and the values the UI knows how to render.
const (
	BidStatusPending    = "Pending"
	BidStatusInProgress = "In Progress"
	BidStatusRejected   = "Rejected"
	BidStatusComplete   = "Complete"
)

// KnownBidStatus reports whether status is one the web client renders.
func KnownBidStatus(status string) bool {
	switch status {
	case BidStatusPending, BidStatusInProgress, BidStatusRejected, BidStatusComplete:
		return true
	}
	return false
}

// Bid is an offer from a bidder (Email) on a job (JobID).
//
// JobTitle, Category and Buyer are denormalised from the job when the bid is
// placed so "my bids" and "bid requests" can be listed without a join.
type Bid struct {
	ID        string    `json:"_id"        bson:"-"`
	JobID     string    `json:"jobId"      bson:"jobId"`
	JobTitle  string    `json:"job_title"  bson:"job_title"`
	Category  string    `json:"category"   bson:"category"`
	Email     string    `json:"email"      bson:"email"`
	Price     float64   `json:"price"      bson:"price"`
	Comment   string    `json:"comment"    bson:"comment"`
	Deadline  time.Time `json:"deadline"   bson:"deadline"`
	Status    string    `json:"status"     bson:"status"`
	Buyer     Buyer     `json:"buyer"      bson:"buyer"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
