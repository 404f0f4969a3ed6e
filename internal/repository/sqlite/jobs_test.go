package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/jobpost-server/internal/apperror"
	"github.com/sakif/jobpost-server/internal/model"
	"github.com/sakif/jobpost-server/internal/query"
	"github.com/sakif/jobpost-server/internal/repository"
)

// newTestDB opens a fresh in-memory database that disappears with the test.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close(context.Background()) })
	return db
}

var baseDeadline = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

// createTestJob inserts a job and fails the test if it errors.
func createTestJob(t *testing.T, db *DB, title, category, buyer string, deadlineOffsetDays int) *model.Job {
	t.Helper()
	job := &model.Job{
		Title:       title,
		Category:    category,
		Deadline:    baseDeadline.AddDate(0, 0, deadlineOffsetDays),
		MinPrice:    100,
		MaxPrice:    500,
		Description: "description of " + title,
		Buyer:       model.Buyer{Email: buyer, Name: "Buyer", Photo: "https://example.com/p.png"},
	}
	if err := db.Jobs().Create(context.Background(), job); err != nil {
		t.Fatalf("failed to create test job: %v", err)
	}
	return job
}

// =========================================================================
// CRUD
// =========================================================================

func TestJobs_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	created := createTestJob(t, db, "Build a landing page", "Web Development", "a@x.com", 3)

	require.NoError(t, repository.ValidateID("job", created.ID), "generated id must be object-id shaped")
	assert.False(t, created.CreatedAt.IsZero())

	got, err := db.Jobs().GetByID(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, created.Category, got.Category)
	assert.True(t, created.Deadline.Equal(got.Deadline), "deadline = %v, want %v", got.Deadline, created.Deadline)
	assert.Equal(t, created.Buyer, got.Buyer)
	assert.Equal(t, 500.0, got.MaxPrice)
}

func TestJobs_GetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Jobs().GetByID(context.Background(), "665f1c2ab1e4c9a0d3f2e101")
	assert.True(t, errors.Is(err, apperror.ErrNotFound), "error = %v, want ErrNotFound", err)
}

func TestJobs_GetByID_MalformedID(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Jobs().GetByID(context.Background(), "not-an-id")
	assert.True(t, errors.Is(err, apperror.ErrValidation), "error = %v, want ErrValidation", err)
}

func TestJobs_ListByBuyer(t *testing.T) {
	db := newTestDB(t)
	createTestJob(t, db, "one", "Web Development", "a@x.com", 1)
	createTestJob(t, db, "two", "Graphics Design", "b@x.com", 2)
	createTestJob(t, db, "three", "Digital Marketing", "a@x.com", 3)

	jobs, err := db.Jobs().ListByBuyer(context.Background(), "a@x.com")
	require.NoError(t, err)

	require.Len(t, jobs, 2)
	assert.Equal(t, "one", jobs[0].Title)
	assert.Equal(t, "three", jobs[1].Title)

	none, err := db.Jobs().ListByBuyer(context.Background(), "A@x.com")
	require.NoError(t, err)
	assert.Empty(t, none, "buyer match is case-sensitive")
}

func TestJobs_List_EmptyIsNotNil(t *testing.T) {
	db := newTestDB(t)

	jobs, err := db.Jobs().List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, jobs, "empty list must encode as [] not null")
	assert.Empty(t, jobs)
}

func TestJobs_Upsert_UpdatesExisting(t *testing.T) {
	db := newTestDB(t)
	job := createTestJob(t, db, "old title", "Web Development", "a@x.com", 1)
	createdAt := job.CreatedAt

	job.Title = "New Title"
	job.MaxPrice = 900
	require.NoError(t, db.Jobs().Upsert(context.Background(), job))

	got, err := db.Jobs().GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Title", got.Title)
	assert.Equal(t, 900.0, got.MaxPrice)
	assert.WithinDuration(t, createdAt, got.CreatedAt, time.Second)

	// title_fold must follow the new title
	found, err := db.Jobs().Find(context.Background(), query.JobPage{Filter: query.JobFilter{Search: "new ti"}, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestJobs_Upsert_InsertsMissing(t *testing.T) {
	db := newTestDB(t)
	job := &model.Job{
		ID:       "665f1c2ab1e4c9a0d3f2e101",
		Title:    "inserted",
		Category: "Web Development",
		Deadline: baseDeadline,
		Buyer:    model.Buyer{Email: "a@x.com"},
	}

	require.NoError(t, db.Jobs().Upsert(context.Background(), job))

	got, err := db.Jobs().GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, "inserted", got.Title)
}

func TestJobs_Delete(t *testing.T) {
	db := newTestDB(t)
	job := createTestJob(t, db, "to delete", "Web Development", "a@x.com", 1)

	require.NoError(t, db.Jobs().Delete(context.Background(), job.ID))

	_, err := db.Jobs().GetByID(context.Background(), job.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	err = db.Jobs().Delete(context.Background(), job.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound), "second delete error = %v, want ErrNotFound", err)
}

// =========================================================================
// FIND / COUNT
// =========================================================================

func seedListing(t *testing.T, db *DB) {
	t.Helper()
	createTestJob(t, db, "Web Designer for Café", "design", "a@x.com", 5)
	createTestJob(t, db, "Logo design", "design", "a@x.com", 1)
	createTestJob(t, db, "WEB app backend", "development", "b@x.com", 3)
	createTestJob(t, db, "Spider-web illustration", "design", "c@x.com", 2)
	createTestJob(t, db, "100% discount banner", "marketing", "c@x.com", 4)
	createTestJob(t, db, "under_score title", "marketing", "c@x.com", 6)
}

func titles(jobs []model.Job) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.Title
	}
	return out
}

func TestJobs_Find(t *testing.T) {
	db := newTestDB(t)
	seedListing(t, db)

	tests := []struct {
		name string
		page query.JobPage
		want []string
	}{
		{
			name: "no filter keeps insertion order",
			page: query.JobPage{Limit: 3},
			want: []string{"Web Designer for Café", "Logo design", "WEB app backend"},
		},
		{
			name: "search is case-insensitive substring",
			page: query.JobPage{Filter: query.JobFilter{Search: "web"}, Limit: 10},
			want: []string{"Web Designer for Café", "WEB app backend", "Spider-web illustration"},
		},
		{
			name: "search and category are combined",
			page: query.JobPage{Filter: query.JobFilter{Search: "web", Category: "design"}, Sort: query.SortAsc, Limit: 10},
			want: []string{"Spider-web illustration", "Web Designer for Café"},
		},
		{
			name: "sort descending by deadline",
			page: query.JobPage{Filter: query.JobFilter{Category: "design"}, Sort: query.SortDesc, Limit: 10},
			want: []string{"Web Designer for Café", "Spider-web illustration", "Logo design"},
		},
		{
			name: "skip and limit",
			page: query.JobPage{Sort: query.SortAsc, Skip: 2, Limit: 2},
			want: []string{"WEB app backend", "100% discount banner"},
		},
		{
			name: "LIKE wildcards are literal",
			page: query.JobPage{Filter: query.JobFilter{Search: "%"}, Limit: 10},
			want: []string{"100% discount banner"},
		},
		{
			name: "underscore is literal",
			page: query.JobPage{Filter: query.JobFilter{Search: "_"}, Limit: 10},
			want: []string{"under_score title"},
		},
		{
			name: "non-ASCII folding",
			page: query.JobPage{Filter: query.JobFilter{Search: "CAFÉ"}, Limit: 10},
			want: []string{"Web Designer for Café"},
		},
		{
			name: "unknown category",
			page: query.JobPage{Filter: query.JobFilter{Category: "Design"}, Limit: 10},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs, err := db.Jobs().Find(context.Background(), tt.page)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(jobs))
		})
	}
}

// The count endpoint and the paginated endpoint must agree: walking every
// page with the same filter yields exactly Count documents, each once.
func TestJobs_CountMatchesPages(t *testing.T) {
	db := newTestDB(t)
	for i := 0; i < 23; i++ {
		category := []string{"design", "development", "marketing"}[i%3]
		title := fmt.Sprintf("job %02d", i)
		if i%4 == 0 {
			title += " web"
		}
		// Several jobs share a deadline to exercise the tiebreaker.
		createTestJob(t, db, title, category, "a@x.com", i%5)
	}

	filters := []query.JobFilter{
		{},
		{Search: "web"},
		{Category: "design"},
		{Search: "WEB", Category: "development"},
		{Search: "nothing matches"},
	}
	sorts := []query.SortOrder{query.SortNone, query.SortAsc, query.SortDesc}

	for _, f := range filters {
		for _, s := range sorts {
			t.Run(fmt.Sprintf("%+v/%s", f, s), func(t *testing.T) {
				ctx := context.Background()
				count, err := db.Jobs().Count(ctx, f)
				require.NoError(t, err)

				for _, size := range []int64{1, 4, 10} {
					seen := map[string]bool{}
					for skip := int64(0); ; skip += size {
						page, err := db.Jobs().Find(ctx, query.JobPage{Filter: f, Sort: s, Skip: skip, Limit: size})
						require.NoError(t, err)
						if len(page) == 0 {
							break
						}
						for _, j := range page {
							assert.False(t, seen[j.ID], "job %s returned on two pages", j.ID)
							seen[j.ID] = true
						}
					}
					assert.Equal(t, count, int64(len(seen)), "size=%d", size)
				}
			})
		}
	}
}
