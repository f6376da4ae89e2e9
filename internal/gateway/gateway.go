// Package gateway translates application records to and from the row store.
// Every operation is scoped by the owning user and is a single round trip;
// retries are the caller's business.
package gateway

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/khrees2412/jobtracker/internal/validation"
	"github.com/khrees2412/jobtracker/pkg/models"
)

// Gateway is the persistence contract the cache depends on.
//
// Update and Delete return an error matching models.ErrNotFound when id does
// not exist or belongs to another owner. Backend failures match models.ErrStore.
type Gateway interface {
	List(ctx context.Context, owner string) ([]models.Application, error)
	Create(ctx context.Context, owner string, input models.ApplicationInput) (models.Application, error)
	Update(ctx context.Context, owner, id string, patch models.ApplicationPatch) (models.Application, error)
	Delete(ctx context.Context, owner, id string) error
}

// Clock abstracts time retrieval so store-assigned timestamps are deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator abstracts record ID generation.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }

func checkOwner(owner string) error {
	if strings.TrimSpace(owner) == "" {
		return &models.ValidationError{Field: "user_id", Message: "is required"}
	}
	return nil
}

func prepareCreate(owner string, input models.ApplicationInput) (models.ApplicationInput, error) {
	if err := checkOwner(owner); err != nil {
		return models.ApplicationInput{}, err
	}
	return validation.ValidateInput(input)
}

func materialize(id, owner string, input models.ApplicationInput, now time.Time) models.Application {
	return models.Application{
		ID:              id,
		UserID:          owner,
		CompanyName:     input.CompanyName,
		Role:            input.Role,
		LocationType:    input.LocationType,
		ApplicationLink: input.ApplicationLink,
		DateApplied:     input.DateApplied,
		Status:          input.Status,
		Notes:           input.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
