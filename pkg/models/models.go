package models

import "time"

// Status is the stage a job application is currently in
type Status string

const (
	StatusApplied   Status = "applied"
	StatusInterview Status = "interview"
	StatusOffer     Status = "offer"
	StatusRejected  Status = "rejected"
)

// Statuses lists every valid status in display order
var Statuses = []Status{StatusApplied, StatusInterview, StatusOffer, StatusRejected}

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// LocationType describes where the role is performed
type LocationType string

const (
	LocationRemote LocationType = "remote"
	LocationOnsite LocationType = "onsite"
	LocationHybrid LocationType = "hybrid"
)

var LocationTypes = []LocationType{LocationRemote, LocationOnsite, LocationHybrid}

func (l LocationType) Valid() bool {
	for _, known := range LocationTypes {
		if l == known {
			return true
		}
	}
	return false
}

// DateLayout is the ISO calendar date form used for DateApplied
const DateLayout = "2006-01-02"

// User represents the signed-in user's profile information
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Application represents a tracked job application
type Application struct {
	ID              string       `json:"id"`
	UserID          string       `json:"user_id"`
	CompanyName     string       `json:"company_name"`
	Role            string       `json:"role"`
	LocationType    LocationType `json:"location_type"`
	ApplicationLink string       `json:"application_link,omitempty"`
	DateApplied     string       `json:"date_applied"`
	Status          Status       `json:"status"`
	Notes           string       `json:"notes,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// ApplicationInput is the client-supplied part of a new application.
// The store fills in ID, owner and timestamps.
type ApplicationInput struct {
	CompanyName     string       `json:"company_name" validate:"required,max=200"`
	Role            string       `json:"role" validate:"required,max=200"`
	LocationType    LocationType `json:"location_type" validate:"required,oneof=remote onsite hybrid"`
	ApplicationLink string       `json:"application_link" validate:"omitempty,url,max=2048"`
	DateApplied     string       `json:"date_applied" validate:"required,datetime=2006-01-02"`
	Status          Status       `json:"status" validate:"required,oneof=applied interview offer rejected"`
	Notes           string       `json:"notes" validate:"max=5000"`
}

// NewApplicationInput returns an input carrying the form defaults
func NewApplicationInput(now time.Time) ApplicationInput {
	return ApplicationInput{
		LocationType: LocationRemote,
		Status:       StatusApplied,
		DateApplied:  now.Format(DateLayout),
	}
}

// ApplicationPatch carries a partial update; nil fields are left untouched
type ApplicationPatch struct {
	CompanyName     *string       `json:"company_name,omitempty"`
	Role            *string       `json:"role,omitempty"`
	LocationType    *LocationType `json:"location_type,omitempty"`
	ApplicationLink *string       `json:"application_link,omitempty"`
	DateApplied     *string       `json:"date_applied,omitempty"`
	Status          *Status       `json:"status,omitempty"`
	Notes           *string       `json:"notes,omitempty"`
}

// Empty reports whether the patch changes nothing
func (p ApplicationPatch) Empty() bool {
	return p.CompanyName == nil && p.Role == nil && p.LocationType == nil &&
		p.ApplicationLink == nil && p.DateApplied == nil && p.Status == nil && p.Notes == nil
}

// ApplyTo returns a copy of app with the patch fields applied
func (p ApplicationPatch) ApplyTo(app Application) Application {
	if p.CompanyName != nil {
		app.CompanyName = *p.CompanyName
	}
	if p.Role != nil {
		app.Role = *p.Role
	}
	if p.LocationType != nil {
		app.LocationType = *p.LocationType
	}
	if p.ApplicationLink != nil {
		app.ApplicationLink = *p.ApplicationLink
	}
	if p.DateApplied != nil {
		app.DateApplied = *p.DateApplied
	}
	if p.Status != nil {
		app.Status = *p.Status
	}
	if p.Notes != nil {
		app.Notes = *p.Notes
	}
	return app
}

// Stats summarises a set of applications
type Stats struct {
	Total      int `json:"total"`
	Applied    int `json:"applied"`
	Interviews int `json:"interviews"`
	Offers     int `json:"offers"`
	Rejected   int `json:"rejected"`
}

// Count returns the number of applications in the given status
func (s Stats) Count(status Status) int {
	switch status {
	case StatusApplied:
		return s.Applied
	case StatusInterview:
		return s.Interviews
	case StatusOffer:
		return s.Offers
	case StatusRejected:
		return s.Rejected
	}
	return 0
}

// ResponseRate is the share of applications that heard back, as a percentage
func (s Stats) ResponseRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Interviews+s.Offers+s.Rejected) / float64(s.Total) * 100
}
