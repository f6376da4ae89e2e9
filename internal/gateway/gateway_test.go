package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/khrees2412/jobtracker/internal/testutil"
	"github.com/khrees2412/jobtracker/pkg/models"
)

type gatewayFactory func(t *testing.T) Gateway

func backends() map[string]gatewayFactory {
	return map[string]gatewayFactory{
		"memory": func(t *testing.T) Gateway {
			return NewMemoryGateway(testutil.NewTickingClock(), testutil.NewStubIDGenerator())
		},
		"sqlite": func(t *testing.T) Gateway {
			db, adapter := testutil.NewTestDatabase(t)
			testutil.SeedUser(t, db, "owner-1", "one@example.com")
			testutil.SeedUser(t, db, "owner-2", "two@example.com")
			return NewSQLGateway(db, adapter, testutil.NewTickingClock(), testutil.NewStubIDGenerator())
		},
	}
}

func input(company, date string, status models.Status) models.ApplicationInput {
	return models.ApplicationInput{
		CompanyName:  company,
		Role:         "Engineer",
		LocationType: models.LocationRemote,
		DateApplied:  date,
		Status:       status,
	}
}

func forEachBackend(t *testing.T, fn func(t *testing.T, gw Gateway)) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			fn(t, factory(t))
		})
	}
}

func TestCreateAssignsStoreFields(t *testing.T) {
	forEachBackend(t, func(t *testing.T, gw Gateway) {
		app, err := gw.Create(context.Background(), "owner-1", input("  Acme ", "2024-03-01", models.StatusApplied))
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if app.ID != "id-1" {
			t.Errorf("ID = %q, want %q", app.ID, "id-1")
		}
		if app.UserID != "owner-1" {
			t.Errorf("UserID = %q, want %q", app.UserID, "owner-1")
		}
		if app.CompanyName != "Acme" {
			t.Errorf("CompanyName = %q, want trimmed %q", app.CompanyName, "Acme")
		}
		if app.CreatedAt.IsZero() || !app.CreatedAt.Equal(app.UpdatedAt) {
			t.Errorf("CreatedAt = %v, UpdatedAt = %v, want equal non-zero", app.CreatedAt, app.UpdatedAt)
		}
	})
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	forEachBackend(t, func(t *testing.T, gw Gateway) {
		ctx := context.Background()
		_, err := gw.Create(ctx, "owner-1", input("", "2024-03-01", models.StatusApplied))
		if !errors.Is(err, models.ErrInvalidArgument) {
			t.Fatalf("Create() error = %v, want ErrInvalidArgument", err)
		}
		var vErr *models.ValidationError
		if !errors.As(err, &vErr) || vErr.Field != "company_name" {
			t.Errorf("Create() error = %v, want company_name validation error", err)
		}

		_, err = gw.Create(ctx, "", input("Acme", "2024-03-01", models.StatusApplied))
		if !errors.Is(err, models.ErrInvalidArgument) {
			t.Errorf("Create() with no owner error = %v, want ErrInvalidArgument", err)
		}

		apps, err := gw.List(ctx, "owner-1")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(apps) != 0 {
			t.Errorf("List() returned %d records after rejected creates, want 0", len(apps))
		}
	})
}

func TestListOrderAndScope(t *testing.T) {
	forEachBackend(t, func(t *testing.T, gw Gateway) {
		ctx := context.Background()
		for _, in := range []models.ApplicationInput{
			input("Older", "2024-01-10", models.StatusApplied),
			input("Newest", "2024-03-05", models.StatusInterview),
			input("Middle", "2024-02-01", models.StatusRejected),
		} {
			if _, err := gw.Create(ctx, "owner-1", in); err != nil {
				t.Fatalf("Create(%s) error = %v", in.CompanyName, err)
			}
		}
		if _, err := gw.Create(ctx, "owner-2", input("Elsewhere", "2024-04-01", models.StatusOffer)); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		apps, err := gw.List(ctx, "owner-1")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		want := []string{"Newest", "Middle", "Older"}
		if len(apps) != len(want) {
			t.Fatalf("List() returned %d records, want %d", len(apps), len(want))
		}
		for i, name := range want {
			if apps[i].CompanyName != name {
				t.Errorf("apps[%d].CompanyName = %q, want %q", i, apps[i].CompanyName, name)
			}
			if apps[i].UserID != "owner-1" {
				t.Errorf("apps[%d].UserID = %q, want owner-1", i, apps[i].UserID)
			}
		}
	})
}

func TestUpdateAppliesOnlySuppliedFields(t *testing.T) {
	forEachBackend(t, func(t *testing.T, gw Gateway) {
		ctx := context.Background()
		created, err := gw.Create(ctx, "owner-1", input("Meta", "2024-02-20", models.StatusApplied))
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		status := models.StatusOffer
		updated, err := gw.Update(ctx, "owner-1", created.ID, models.ApplicationPatch{Status: &status})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.Status != models.StatusOffer {
			t.Errorf("Status = %q, want %q", updated.Status, models.StatusOffer)
		}
		if updated.CompanyName != "Meta" || updated.DateApplied != "2024-02-20" {
			t.Errorf("untouched fields changed: %+v", updated)
		}
		if !updated.UpdatedAt.After(created.UpdatedAt) {
			t.Errorf("UpdatedAt = %v, want after %v", updated.UpdatedAt, created.UpdatedAt)
		}
		if !updated.CreatedAt.Equal(created.CreatedAt) {
			t.Errorf("CreatedAt = %v, want %v", updated.CreatedAt, created.CreatedAt)
		}

		apps, err := gw.List(ctx, "owner-1")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(apps) != 1 || apps[0].Status != models.StatusOffer {
			t.Errorf("List() = %+v, want one offer", apps)
		}
	})
}

func TestUpdateErrors(t *testing.T) {
	forEachBackend(t, func(t *testing.T, gw Gateway) {
		ctx := context.Background()
		created, err := gw.Create(ctx, "owner-1", input("Acme", "2024-02-20", models.StatusApplied))
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		status := models.StatusInterview

		tests := []struct {
			name  string
			owner string
			id    string
			patch models.ApplicationPatch
			want  error
		}{
			{name: "missing id", owner: "owner-1", id: "missing", patch: models.ApplicationPatch{Status: &status}, want: models.ErrNotFound},
			{name: "other owner", owner: "owner-2", id: created.ID, patch: models.ApplicationPatch{Status: &status}, want: models.ErrNotFound},
			{name: "empty patch", owner: "owner-1", id: created.ID, patch: models.ApplicationPatch{}, want: models.ErrInvalidArgument},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := gw.Update(ctx, tt.owner, tt.id, tt.patch)
				if !errors.Is(err, tt.want) {
					t.Errorf("Update() error = %v, want %v", err, tt.want)
				}
			})
		}
	})
}

func TestDelete(t *testing.T) {
	forEachBackend(t, func(t *testing.T, gw Gateway) {
		ctx := context.Background()
		created, err := gw.Create(ctx, "owner-1", input("Acme", "2024-02-20", models.StatusApplied))
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		if err := gw.Delete(ctx, "owner-2", created.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Delete() by other owner error = %v, want ErrNotFound", err)
		}
		if err := gw.Delete(ctx, "owner-1", created.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if err := gw.Delete(ctx, "owner-1", created.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("second Delete() error = %v, want ErrNotFound", err)
		}

		apps, err := gw.List(ctx, "owner-1")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(apps) != 0 {
			t.Errorf("List() returned %d records, want 0", len(apps))
		}
	})
}

func TestMemoryGatewayFailure(t *testing.T) {
	gw := NewMemoryGateway(testutil.FixedClock(), testutil.NewStubIDGenerator())
	gw.SetFailure(errors.New("connection reset"))

	_, err := gw.List(context.Background(), "owner-1")
	if !errors.Is(err, models.ErrStore) {
		t.Errorf("List() error = %v, want ErrStore", err)
	}

	gw.SetFailure(nil)
	if _, err := gw.List(context.Background(), "owner-1"); err != nil {
		t.Errorf("List() after recovery error = %v", err)
	}
}
