package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/sakif/jobpost-server/internal/apperror"
	"github.com/sakif/jobpost-server/internal/model"
	"github.com/sakif/jobpost-server/internal/query"
)

// =========================================================================
// MOCK REPOSITORIES
// =========================================================================
//
// Hand-written in-memory fakes of repository.JobRepository and
// repository.BidRepository. Every method bumps calls, so a test can assert
// that a rejected request never reached the store at all.

type mockJobRepo struct {
	mu     sync.Mutex
	jobs   map[string]*model.Job
	order  []string
	nextID int
	calls  int
	err    error // returned by every method when set
}

func newMockJobRepo() *mockJobRepo {
	return &mockJobRepo{jobs: make(map[string]*model.Job)}
}

func (m *mockJobRepo) hit() error {
	m.calls++
	return m.err
}

func (m *mockJobRepo) put(j *model.Job) {
	if _, ok := m.jobs[j.ID]; !ok {
		m.order = append(m.order, j.ID)
	}
	stored := *j
	m.jobs[j.ID] = &stored
}

func (m *mockJobRepo) Create(_ context.Context, job *model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit(); err != nil {
		return err
	}
	m.nextID++
	job.ID = fmt.Sprintf("%024x", m.nextID)
	m.put(job)
	return nil
}

func (m *mockJobRepo) GetByID(_ context.Context, id string) (*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit(); err != nil {
		return nil, err
	}
	j, ok := m.jobs[id]
	if !ok {
		return nil, apperror.NotFound("job", id)
	}
	out := *j
	return &out, nil
}

func (m *mockJobRepo) List(_ context.Context) ([]model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit(); err != nil {
		return nil, err
	}
	out := make([]model.Job, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.jobs[id])
	}
	return out, nil
}

func (m *mockJobRepo) ListByBuyer(_ context.Context, email string) ([]model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit(); err != nil {
		return nil, err
	}
	out := []model.Job{}
	for _, id := range m.order {
		if j := m.jobs[id]; j.Buyer.Email == email {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (m *mockJobRepo) Upsert(_ context.Context, job *model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit(); err != nil {
		return err
	}
	m.put(job)
	return nil
}

func (m *mockJobRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit(); err != nil {
		return err
	}
	if _, ok := m.jobs[id]; !ok {
		return apperror.NotFound("job", id)
	}
	delete(m.jobs, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *mockJobRepo) Find(_ context.Context, page query.JobPage) ([]model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit(); err != nil {
		return nil, err
	}
	out := []model.Job{}
	for _, id := range m.order {
		out = append(out, *m.jobs[id])
	}
	if page.Skip >= int64(len(out)) {
		return []model.Job{}, nil
	}
	out = out[page.Skip:]
	if page.Limit < int64(len(out)) {
		out = out[:page.Limit]
	}
	return out, nil
}

func (m *mockJobRepo) Count(_ context.Context, _ query.JobFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit(); err != nil {
		return 0, err
	}
	return int64(len(m.jobs)), nil
}

type mockBidRepo struct {
	mu     sync.Mutex
	bids   map[string]*model.Bid
	nextID int
	calls  int
	err    error

	// existsOverride forces Exists to report false, simulating a request
	// that passed the pre-check before a concurrent insert landed.
	existsOverride bool
}

func newMockBidRepo() *mockBidRepo {
	return &mockBidRepo{bids: make(map[string]*model.Bid)}
}

func (m *mockBidRepo) hit() error {
	m.calls++
	return m.err
}

func (m *mockBidRepo) Create(_ context.Context, bid *model.Bid) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit(); err != nil {
		return err
	}
	for _, b := range m.bids {
		if b.Email == bid.Email && b.JobID == bid.JobID {
			return apperror.DuplicateBid()
		}
	}
	m.nextID++
	bid.ID = fmt.Sprintf("%024x", 1000+m.nextID)
	stored := *bid
	m.bids[bid.ID] = &stored
	return nil
}

func (m *mockBidRepo) Exists(_ context.Context, email, jobID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit(); err != nil {
		return false, err
	}
	if m.existsOverride {
		return false, nil
	}
	for _, b := range m.bids {
		if b.Email == email && b.JobID == jobID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockBidRepo) ListByBidder(_ context.Context, email string) ([]model.Bid, error) {
	return m.filter(func(b *model.Bid) bool { return b.Email == email })
}

func (m *mockBidRepo) ListByBuyer(_ context.Context, email string) ([]model.Bid, error) {
	return m.filter(func(b *model.Bid) bool { return b.Buyer.Email == email })
}

func (m *mockBidRepo) filter(keep func(*model.Bid) bool) ([]model.Bid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit(); err != nil {
		return nil, err
	}
	out := []model.Bid{}
	for _, b := range m.bids {
		if keep(b) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *mockBidRepo) UpdateStatus(_ context.Context, id, status string) (*model.Bid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit(); err != nil {
		return nil, err
	}
	b, ok := m.bids[id]
	if !ok {
		return nil, apperror.NotFound("bid", id)
	}
	b.Status = status
	out := *b
	return &out, nil
}

// =========================================================================
// HELPERS
// =========================================================================

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testServices struct {
	jobs    *JobService
	bids    *BidService
	jobRepo *mockJobRepo
	bidRepo *mockBidRepo
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	jobRepo := newMockJobRepo()
	bidRepo := newMockBidRepo()
	v := NewValidator()
	return &testServices{
		jobs:    NewJobService(jobRepo, v, discardLogger()),
		bids:    NewBidService(bidRepo, jobRepo, v, discardLogger()),
		jobRepo: jobRepo,
		bidRepo: bidRepo,
	}
}
