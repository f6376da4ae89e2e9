package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/khrees2412/jobtracker/internal/auth"
	"github.com/khrees2412/jobtracker/internal/config"
	"github.com/khrees2412/jobtracker/internal/gateway"
	"github.com/khrees2412/jobtracker/pkg/models"
)

func newTestApp(t *testing.T, store string) *App {
	t.Helper()
	cfg := &config.Config{
		DatabaseDriver: "sqlite",
		StoreBackend:   store,
		SessionTTL:     time.Hour,
		CoalesceLoads:  true,
	}
	a, err := New(context.Background(), cfg, t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNewSelectsGateway(t *testing.T) {
	if _, ok := newTestApp(t, config.StoreSQL).Gateway.(*gateway.SQLGateway); !ok {
		t.Error("sql store did not produce a SQLGateway")
	}
	if _, ok := newTestApp(t, config.StoreMemory).Gateway.(*gateway.MemoryGateway); !ok {
		t.Error("memory store did not produce a MemoryGateway")
	}
}

func TestRequireDurableStore(t *testing.T) {
	if err := newTestApp(t, config.StoreSQL).RequireDurableStore(); err != nil {
		t.Errorf("sql store: RequireDurableStore() error = %v", err)
	}
	err := newTestApp(t, config.StoreMemory).RequireDurableStore()
	if !errors.Is(err, ErrEphemeralStore) {
		t.Fatalf("memory store: RequireDurableStore() error = %v, want ErrEphemeralStore", err)
	}
	if Hint(err) == "" {
		t.Error("Hint(ErrEphemeralStore) is empty")
	}
}

func TestSessionFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, config.StoreSQL)

	if _, err := a.CurrentSession(ctx); !errors.Is(err, auth.ErrNoSession) {
		t.Fatalf("CurrentSession() with no file error = %v, want ErrNoSession", err)
	}

	session, err := a.Auth.SignUp(ctx, "owner@example.com", "password123", "")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if err := a.SaveSession(session); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	resumed, err := a.CurrentSession(ctx)
	if err != nil {
		t.Fatalf("CurrentSession() error = %v", err)
	}
	if resumed.CurrentUser().ID != session.CurrentUser().ID {
		t.Errorf("CurrentSession() user = %q, want %q", resumed.CurrentUser().ID, session.CurrentUser().ID)
	}

	if err := a.Auth.SignOut(ctx, session); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	if _, err := a.CurrentSession(ctx); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("CurrentSession() after sign-out error = %v, want ErrUnauthorized", err)
	}
}

func TestNewCacheUsesGateway(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, config.StoreSQL)
	session, err := a.Auth.SignUp(ctx, "owner@example.com", "password123", "")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	c := a.NewCache(session)
	input := models.NewApplicationInput(time.Now())
	input.CompanyName = "Acme"
	input.Role = "Engineer"
	if _, err := c.Add(ctx, input); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if got := len(c.Records()); got != 1 {
		t.Errorf("Records() has %d entries, want 1", got)
	}
}

func TestHint(t *testing.T) {
	if Hint(&models.AuthError{Op: "x", Err: auth.ErrNoSession}) == "" {
		t.Error("Hint() empty for missing session")
	}
	if Hint(errors.New("boom")) != "" {
		t.Error("Hint() non-empty for an unclassified error")
	}
}
