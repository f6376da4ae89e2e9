package matcher

import (
	"strings"

	"github.com/khrees2412/jobtracker/pkg/models"
	"golang.org/x/text/cases"
)

// Field names reported by MatchedFields
const (
	FieldCompany = "company_name"
	FieldRole    = "role"
)

// Matcher tests applications against a free-text query.
// Matching is a case-insensitive substring test on company name and role,
// using Unicode case folding so "goog" finds "Google" and "ΣΟΦΙΑ" finds "σοφια".
type Matcher struct {
	folded string
	folder cases.Caser
}

// New builds a matcher for query. Surrounding whitespace is ignored; an empty
// query matches everything.
func New(query string) *Matcher {
	folder := cases.Fold()
	return &Matcher{
		folded: folder.String(strings.TrimSpace(query)),
		folder: folder,
	}
}

// Empty reports whether the matcher accepts every application
func (m *Matcher) Empty() bool {
	return m.folded == ""
}

// Matches reports whether the query occurs in the company name or role
func (m *Matcher) Matches(app *models.Application) bool {
	if m.Empty() {
		return true
	}
	return m.contains(app.CompanyName) || m.contains(app.Role)
}

// MatchedFields lists which searchable fields contain the query
func (m *Matcher) MatchedFields(app *models.Application) []string {
	if m.Empty() {
		return nil
	}

	fields := []string{}
	if m.contains(app.CompanyName) {
		fields = append(fields, FieldCompany)
	}
	if m.contains(app.Role) {
		fields = append(fields, FieldRole)
	}
	return fields
}

// The folding Caser is stateless, so a Matcher is safe for concurrent use.
func (m *Matcher) contains(value string) bool {
	return strings.Contains(m.folder.String(value), m.folded)
}
