package view

import (
	"reflect"
	"testing"

	"github.com/khrees2412/jobtracker/pkg/models"
)

func app(id, company, role string, status models.Status) models.Application {
	return models.Application{ID: id, CompanyName: company, Role: role, Status: status}
}

func ids(apps []models.Application) []string {
	out := []string{}
	for _, a := range apps {
		out = append(out, a.ID)
	}
	return out
}

var sample = []models.Application{
	app("1", "Google", "SWE", models.StatusApplied),
	app("2", "Meta", "Product Engineer", models.StatusOffer),
	app("3", "Stripe", "Backend Engineer", models.StatusInterview),
	app("4", "Goodyear", "Data Analyst", models.StatusRejected),
	app("5", "Netflix", "SRE", models.StatusApplied),
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "no filter", filter: Filter{}, want: []string{"1", "2", "3", "4", "5"}},
		{name: "all is a no-op", filter: Filter{Status: StatusAll}, want: []string{"1", "2", "3", "4", "5"}},
		{name: "status only", filter: Filter{Status: "offer"}, want: []string{"2"}},
		{name: "status case-insensitive", filter: Filter{Status: " Applied "}, want: []string{"1", "5"}},
		{name: "query prefix", filter: Filter{Query: "goog"}, want: []string{"1"}},
		{name: "query matches role", filter: Filter{Query: "ENGINEER"}, want: []string{"2", "3"}},
		{name: "query and status", filter: Filter{Query: "engineer", Status: "interview"}, want: []string{"3"}},
		{name: "whitespace query", filter: Filter{Query: "   "}, want: []string{"1", "2", "3", "4", "5"}},
		{name: "unknown status", filter: Filter{Status: "ghosted"}, want: []string{}},
		{name: "no match", filter: Filter{Query: "amazon"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Apply(sample, tt.filter))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Apply(%+v) = %v, want %v", tt.filter, got, tt.want)
			}
		})
	}
}

func TestApplyScenario(t *testing.T) {
	records := []models.Application{
		app("g", "Google", "SWE", models.StatusApplied),
		app("m", "Meta", "SWE", models.StatusOffer),
	}
	got := Apply(records, Filter{Status: "offer"})
	if len(got) != 1 || got[0].CompanyName != "Meta" {
		t.Errorf("Apply(offer) = %+v, want only Meta", got)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	filters := []Filter{
		{},
		{Status: "applied"},
		{Query: "e"},
		{Query: "eng", Status: "offer"},
	}
	for _, f := range filters {
		once := Apply(sample, f)
		twice := Apply(once, f)
		if !reflect.DeepEqual(ids(once), ids(twice)) {
			t.Errorf("Apply(%+v) not idempotent: %v then %v", f, ids(once), ids(twice))
		}
	}
}

func TestApplyDoesNotModifyInput(t *testing.T) {
	records := append([]models.Application(nil), sample...)
	Apply(records, Filter{Status: "offer", Query: "meta"})
	if !reflect.DeepEqual(records, sample) {
		t.Error("Apply() modified its input")
	}
}

func TestStatistics(t *testing.T) {
	stats := Statistics(sample)
	want := models.Stats{Total: 5, Applied: 2, Interviews: 1, Offers: 1, Rejected: 1}
	if stats != want {
		t.Errorf("Statistics() = %+v, want %+v", stats, want)
	}

	sum := 0
	for _, s := range models.Statuses {
		sum += stats.Count(s)
	}
	if sum != stats.Total {
		t.Errorf("per-status counts sum to %d, want %d", sum, stats.Total)
	}
	if got := stats.ResponseRate(); got != 60 {
		t.Errorf("ResponseRate() = %v, want 60", got)
	}

	if empty := Statistics(nil); empty != (models.Stats{}) {
		t.Errorf("Statistics(nil) = %+v, want zero", empty)
	}
}

func TestGroupByStatus(t *testing.T) {
	groups := GroupByStatus(sample)
	if got := ids(groups[models.StatusApplied]); !reflect.DeepEqual(got, []string{"1", "5"}) {
		t.Errorf("applied group = %v, want [1 5]", got)
	}
	if _, ok := groups[models.StatusOffer]; !ok {
		t.Error("offer group missing")
	}
}
