// Package view derives what presentation shows from the cached records:
// the filtered and searched list, and aggregate statistics.
package view

import (
	"strings"

	"github.com/khrees2412/jobtracker/internal/matcher"
	"github.com/khrees2412/jobtracker/pkg/models"
)

// StatusAll disables status filtering.
const StatusAll = "all"

// Filter selects a subset of applications. An empty Status means StatusAll.
type Filter struct {
	Status string `json:"status"`
	Query  string `json:"query"`
}

func (f Filter) allStatuses() bool {
	s := strings.TrimSpace(f.Status)
	return s == "" || strings.EqualFold(s, StatusAll)
}

// Apply returns the records that match the query and the status filter,
// in input order. It never modifies records.
func Apply(records []models.Application, filter Filter) []models.Application {
	m := matcher.New(filter.Query)
	status := models.Status(strings.ToLower(strings.TrimSpace(filter.Status)))
	allStatuses := filter.allStatuses()

	out := make([]models.Application, 0, len(records))
	for i := range records {
		if !m.Matches(&records[i]) {
			continue
		}
		if !allStatuses && records[i].Status != status {
			continue
		}
		out = append(out, records[i])
	}
	return out
}

// Statistics counts records in total and per status.
func Statistics(records []models.Application) models.Stats {
	stats := models.Stats{Total: len(records)}
	for _, app := range records {
		switch app.Status {
		case models.StatusApplied:
			stats.Applied++
		case models.StatusInterview:
			stats.Interviews++
		case models.StatusOffer:
			stats.Offers++
		case models.StatusRejected:
			stats.Rejected++
		}
	}
	return stats
}

// GroupByStatus partitions records by status, keeping input order within
// each group.
func GroupByStatus(records []models.Application) map[models.Status][]models.Application {
	groups := make(map[models.Status][]models.Application, len(models.Statuses))
	for _, app := range records {
		groups[app.Status] = append(groups[app.Status], app)
	}
	return groups
}
