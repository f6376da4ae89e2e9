package gateway

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/khrees2412/jobtracker/internal/validation"
	"github.com/khrees2412/jobtracker/pkg/models"
)

// MemoryGateway keeps applications in process memory. It backs the
// "memory" store and the tests.
type MemoryGateway struct {
	mu    sync.RWMutex
	apps  map[string]models.Application
	clock Clock
	ids   IDGenerator

	failWith error
}

func NewMemoryGateway(clock Clock, ids IDGenerator) *MemoryGateway {
	return &MemoryGateway{
		apps:  make(map[string]models.Application),
		clock: clock,
		ids:   ids,
	}
}

// SetFailure makes every subsequent call fail with err; nil restores normal operation.
func (g *MemoryGateway) SetFailure(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failWith = err
}

func (g *MemoryGateway) List(_ context.Context, owner string) ([]models.Application, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.failWith != nil {
		return nil, models.NewStoreError("list applications", g.failWith)
	}

	apps := []models.Application{}
	for _, app := range g.apps {
		if app.UserID == owner {
			apps = append(apps, app)
		}
	}
	sort.SliceStable(apps, func(i, j int) bool {
		if apps[i].DateApplied != apps[j].DateApplied {
			return apps[i].DateApplied > apps[j].DateApplied
		}
		return apps[i].CreatedAt.After(apps[j].CreatedAt)
	})
	return apps, nil
}

func (g *MemoryGateway) Create(_ context.Context, owner string, input models.ApplicationInput) (models.Application, error) {
	input, err := prepareCreate(owner, input)
	if err != nil {
		return models.Application{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return models.Application{}, models.NewStoreError("insert application", g.failWith)
	}

	app := materialize(g.ids.New(), owner, input, g.clock.Now().UTC())
	g.apps[app.ID] = app
	return app, nil
}

func (g *MemoryGateway) Update(_ context.Context, owner, id string, patch models.ApplicationPatch) (models.Application, error) {
	if err := checkOwner(owner); err != nil {
		return models.Application{}, err
	}
	patch, err := validation.ValidatePatch(patch)
	if err != nil {
		return models.Application{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return models.Application{}, models.NewStoreError("update application", g.failWith)
	}

	current, ok := g.apps[id]
	if !ok || current.UserID != owner {
		return models.Application{}, fmt.Errorf("application %s: %w", id, models.ErrNotFound)
	}

	updated := patch.ApplyTo(current)
	updated.UpdatedAt = g.clock.Now().UTC()
	g.apps[id] = updated
	return updated, nil
}

func (g *MemoryGateway) Delete(_ context.Context, owner, id string) error {
	if err := checkOwner(owner); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return models.NewStoreError("delete application", g.failWith)
	}

	current, ok := g.apps[id]
	if !ok || current.UserID != owner {
		return fmt.Errorf("application %s: %w", id, models.ErrNotFound)
	}
	delete(g.apps, id)
	return nil
}
