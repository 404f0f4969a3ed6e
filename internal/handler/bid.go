package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/jobpost-server/internal/service"
)

// BidHandler exposes the bids collection over HTTP.
type BidHandler struct {
	bids   *service.BidService
	logger *slog.Logger
}

// NewBidHandler creates a BidHandler.
func NewBidHandler(bids *service.BidService, logger *slog.Logger) *BidHandler {
	return &BidHandler{bids: bids, logger: logger}
}

// HandlePlace stores a bid.
//
// HTTP: POST /bids
// RESPONSE: 201 with the stored bid; 400 duplicate_bid if the bidder already
// bid on the job.
func (h *BidHandler) HandlePlace(w http.ResponseWriter, r *http.Request) {
	var in service.BidInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeError(w, h.logger, err)
		return
	}

	bid, err := h.bids.Place(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, bid)
}

// HandleMyBids lists the caller's bids.
//
// HTTP: GET /my-bids/{email} (authenticated; email must be the caller's)
func (h *BidHandler) HandleMyBids(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	email, err := emailParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	bids, err := h.bids.ListByBidder(r.Context(), id, email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, bids)
}

// HandleBidRequests lists bids received on the caller's jobs.
//
// HTTP: GET /bid-requests/{email} (authenticated; email must be the caller's)
func (h *BidHandler) HandleBidRequests(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	email, err := emailParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	bids, err := h.bids.ListByBuyer(r.Context(), id, email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, bids)
}

// HandleUpdateStatus changes a bid's status.
//
// HTTP: PATCH /bid/{id}
// REQUEST BODY: {"status": "In Progress"}; any other field is a 400.
func (h *BidHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var in service.StatusInput
	if err := decodeJSON(w, r, &in, true); err != nil {
		writeError(w, h.logger, err)
		return
	}

	bid, err := h.bids.UpdateStatus(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, bid)
}
