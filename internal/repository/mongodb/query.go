package mongodb

import (
	"regexp"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/sakif/jobpost-server/internal/query"
)

// jobFilter translates a JobFilter into a bson filter.
//
// The search text is quoted before it becomes a $regex, so "c++" or "(remote)"
// match literally instead of being interpreted (or rejected) as patterns.
// An empty filter is bson.D{} rather than nil: the driver refuses nil filters.
func jobFilter(f query.JobFilter) bson.D {
	filter := bson.D{}
	if f.Search != "" {
		filter = append(filter, bson.E{
			Key:   "job_title",
			Value: bson.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"},
		})
	}
	if f.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: f.Category})
	}
	return filter
}

// jobSort returns the sort document for s. SortNone still orders by _id so
// skip/limit pages are stable, matching insertion order like SQLite's rowid.
// _id also breaks ties between equal deadlines so pages do not overlap.
func jobSort(s query.SortOrder) bson.D {
	switch s {
	case query.SortAsc:
		return bson.D{{Key: "deadline", Value: 1}, {Key: "_id", Value: 1}}
	case query.SortDesc:
		return bson.D{{Key: "deadline", Value: -1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "_id", Value: 1}}
	}
}

func jobFindOptions(p query.JobPage) *options.FindOptionsBuilder {
	return options.Find().
		SetSort(jobSort(p.Sort)).
		SetSkip(p.Skip).
		SetLimit(p.Limit)
}
