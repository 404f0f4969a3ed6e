// Package query turns the listing parameters of GET /all-jobs and
// GET /jobs-count into a store-independent description of the query.
//
// The repositories translate a JobPage into their own query language
// (a bson filter + find options for MongoDB, a WHERE/ORDER BY/LIMIT clause for
// SQLite). Keeping the parsing here means both backends apply exactly the same
// rules, and the rules can be tested without a database.
//
// RULES:
//   - search:  case-insensitive substring of the job title ("" matches all)
//   - filter:  exact category match, combined with search by AND
//   - sort:    "asc" → deadline ascending, any other non-empty value → descending,
//     absent → no ordering (store default)
//   - page:    1-indexed; size: page length. Skip = (page-1)*size, Limit = size
//
// The count endpoint only uses the filter part (search + category) so that
// sum(len(page_i)) over all pages == count.
package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/sakif/jobpost-server/internal/apperror"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// SortOrder is the deadline ordering requested by the client.
type SortOrder int

const (
	SortNone SortOrder = iota
	SortAsc
	SortDesc
)

func (o SortOrder) String() string {
	switch o {
	case SortAsc:
		return "asc"
	case SortDesc:
		return "desc"
	default:
		return "none"
	}
}

// JobFilter selects jobs. The zero value matches every job.
type JobFilter struct {
	Search   string // substring of the title, matched case-insensitively
	Category string // exact match when non-empty
}

// JobPage is one page of a filtered, optionally sorted job listing.
type JobPage struct {
	Filter JobFilter
	Sort   SortOrder
	Skip   int64
	Limit  int64
}

// ParseJobFilter reads "search" and "filter". It cannot fail: every string is
// a valid substring and a valid category.
func ParseJobFilter(v url.Values) JobFilter {
	return JobFilter{
		Search:   v.Get("search"),
		Category: v.Get("filter"),
	}
}

// ParseSort maps the "sort" parameter onto a SortOrder.
func ParseSort(s string) SortOrder {
	switch {
	case s == "":
		return SortNone
	case s == "asc":
		return SortAsc
	default:
		return SortDesc
	}
}

// ParseJobPage reads all listing parameters.
//
// page and size default to 1 and DefaultPageSize when absent. When present they
// must be positive integers, otherwise a validation error (400) is returned
// instead of letting a bogus skip/limit reach the store. size is clamped to
// MaxPageSize.
func ParseJobPage(v url.Values) (JobPage, error) {
	page, err := positiveInt(v, "page", DefaultPage)
	if err != nil {
		return JobPage{}, err
	}
	size, err := positiveInt(v, "size", DefaultPageSize)
	if err != nil {
		return JobPage{}, err
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	// (page-1)*size must fit in an int64 skip.
	if page-1 > math.MaxInt64/size {
		return JobPage{}, apperror.ValidationFailed("page", "page is too large")
	}

	return JobPage{
		Filter: ParseJobFilter(v),
		Sort:   ParseSort(v.Get("sort")),
		Skip:   (page - 1) * size,
		Limit:  size,
	}, nil
}

func positiveInt(v url.Values, key string, def int64) (int64, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return 0, apperror.ValidationFailed(key, key+" must be a positive integer")
	}
	return n, nil
}
