// Package cache holds the signed-in user's applications in memory. Reads
// are served from the held list; every successful mutation invalidates it
// and refetches the whole list from the gateway.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/khrees2412/jobtracker/internal/auth"
	"github.com/khrees2412/jobtracker/internal/gateway"
	"github.com/khrees2412/jobtracker/internal/logging"
	"github.com/khrees2412/jobtracker/internal/validation"
	"github.com/khrees2412/jobtracker/pkg/models"
	"golang.org/x/sync/singleflight"
)

// Status is the load state of a Cache.
type Status int

const (
	StatusUninitialized Status = iota
	StatusLoading
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Snapshot is a consistent copy of the cache state. Version grows with
// every state change. Subscribers may receive snapshots out of order when
// changes race, and should ignore a Version lower than one already seen.
type Snapshot struct {
	Records []models.Application
	Status  Status
	Err     error
	Version uint64
}

type Option func(*Cache)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger logging.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// WithCoalescing makes concurrent loads started between the same two
// mutations share one gateway fetch.
func WithCoalescing(enabled bool) Option {
	return func(c *Cache) { c.coalesce = enabled }
}

// Cache is safe for concurrent use. Fetch results are committed in ticket
// order: a result is dropped when a fetch that started later has already
// been committed.
type Cache struct {
	gw       gateway.Gateway
	logger   logging.Logger
	coalesce bool
	group    singleflight.Group

	mu          sync.Mutex
	session     *auth.Session
	generation  uint64
	epoch       uint64
	nextTicket  uint64
	committed   uint64
	inflight    map[uint64]struct{}
	records     []models.Application
	settled     Status
	err         error
	version     uint64
	subscribers map[int]func(Snapshot)
	nextSubID   int
}

func New(gw gateway.Gateway, session *auth.Session, opts ...Option) *Cache {
	c := &Cache{
		gw:          gw,
		logger:      logging.NewNopLogger(),
		session:     session,
		inflight:    make(map[uint64]struct{}),
		subscribers: make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the session the cache is scoped to, or nil.
func (c *Cache) Session() *auth.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// SetSession rescopes the cache. Held records are discarded.
func (c *Cache) SetSession(session *auth.Session) {
	c.mu.Lock()
	c.session = session
	c.resetLocked()
	snapshot, subs := c.changedLocked(), c.subscriberList()
	c.mu.Unlock()
	publish(subs, snapshot)
}

// Reset discards the held records and returns the cache to uninitialized.
// Fetches still in flight are dropped when they complete.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.resetLocked()
	snapshot, subs := c.changedLocked(), c.subscriberList()
	c.mu.Unlock()
	publish(subs, snapshot)
}

func (c *Cache) resetLocked() {
	c.generation++
	c.records = nil
	c.settled = StatusUninitialized
	c.err = nil
	c.committed = c.nextTicket
	c.inflight = make(map[uint64]struct{})
}

// Records returns a copy of the held list in gateway order.
func (c *Cache) Records() []models.Application {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Application(nil), c.records...)
}

func (c *Cache) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// Err returns the error of the last committed fetch, if it failed.
func (c *Cache) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Cache) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs on the goroutine that made the change. The returned func
// unregisters it.
func (c *Cache) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

// Load replaces the held list with the gateway's current list. On failure
// the previous records are kept and the status becomes StatusError.
func (c *Cache) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return &models.AuthError{Op: "load applications", Err: auth.ErrNoSession}
	}
	owner := c.session.CurrentUser().ID
	key := fmt.Sprintf("%s/%d/%d", owner, c.generation, c.epoch)
	c.mu.Unlock()

	if !c.coalesce {
		return c.fetch(ctx, owner)
	}
	_, err, shared := c.group.Do(key, func() (any, error) {
		return nil, c.fetch(ctx, owner)
	})
	if shared {
		c.logger.Debug("load coalesced", "owner", owner)
	}
	return err
}

func (c *Cache) fetch(ctx context.Context, owner string) error {
	c.mu.Lock()
	c.nextTicket++
	ticket := c.nextTicket
	generation := c.generation
	c.inflight[ticket] = struct{}{}
	snapshot, subs := c.changedLocked(), c.subscriberList()
	c.mu.Unlock()
	publish(subs, snapshot)

	records, err := c.gw.List(ctx, owner)

	c.mu.Lock()
	delete(c.inflight, ticket)
	current := generation == c.generation && ticket > c.committed
	if current {
		c.committed = ticket
		if err != nil {
			c.settled = StatusError
			c.err = err
		} else {
			c.records = records
			c.settled = StatusReady
			c.err = nil
		}
	}
	snapshot, subs = c.changedLocked(), c.subscriberList()
	c.mu.Unlock()
	publish(subs, snapshot)

	if !current {
		c.logger.Debug("dropped stale fetch", "owner", owner, "ticket", ticket)
	}
	if err != nil {
		c.logger.Warn("load applications failed", "owner", owner, "error", err)
		return err
	}
	c.logger.Debug("loaded applications", "owner", owner, "count", len(records))
	return nil
}

// Add validates input, creates the record and reloads. The returned record
// is the store's; the reload outcome is reported through Status and Err.
func (c *Cache) Add(ctx context.Context, input models.ApplicationInput) (models.Application, error) {
	owner, err := c.owner("add application")
	if err != nil {
		return models.Application{}, err
	}
	input, err = validation.ValidateInput(input)
	if err != nil {
		return models.Application{}, err
	}

	created, err := c.gw.Create(ctx, owner, input)
	if err != nil {
		return models.Application{}, err
	}
	c.logger.Info("application added", "id", created.ID, "company", created.CompanyName)

	c.invalidateAndReload(ctx, "add")
	return created, nil
}

// Change applies patch to the record with the given id and reloads.
func (c *Cache) Change(ctx context.Context, id string, patch models.ApplicationPatch) (models.Application, error) {
	owner, err := c.owner("change application")
	if err != nil {
		return models.Application{}, err
	}
	patch, err = validation.ValidatePatch(patch)
	if err != nil {
		return models.Application{}, err
	}

	updated, err := c.gw.Update(ctx, owner, id, patch)
	if err != nil {
		return models.Application{}, err
	}
	c.logger.Info("application changed", "id", id)

	c.invalidateAndReload(ctx, "change")
	return updated, nil
}

// Remove deletes the record with the given id and reloads.
func (c *Cache) Remove(ctx context.Context, id string) error {
	owner, err := c.owner("remove application")
	if err != nil {
		return err
	}

	if err := c.gw.Delete(ctx, owner, id); err != nil {
		return err
	}
	c.logger.Info("application removed", "id", id)

	c.invalidateAndReload(ctx, "remove")
	return nil
}

// Resolve finds a held record by id or by a unique id prefix.
func (c *Cache) Resolve(idOrPrefix string) (models.Application, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return models.Application{}, &models.ValidationError{Field: "id", Message: "is required"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var matches []models.Application
	for _, app := range c.records {
		if app.ID == idOrPrefix {
			return app, nil
		}
		if strings.HasPrefix(app.ID, idOrPrefix) {
			matches = append(matches, app)
		}
	}
	switch len(matches) {
	case 0:
		return models.Application{}, fmt.Errorf("application %s: %w", idOrPrefix, models.ErrNotFound)
	case 1:
		return matches[0], nil
	}
	return models.Application{}, &models.ValidationError{
		Field:   "id",
		Message: fmt.Sprintf("prefix %q matches %d applications", idOrPrefix, len(matches)),
	}
}

func (c *Cache) invalidateAndReload(ctx context.Context, op string) {
	c.mu.Lock()
	c.epoch++
	c.mu.Unlock()

	if err := c.Load(ctx); err != nil {
		c.logger.Warn("reload after "+op+" failed", "error", err)
	}
}

func (c *Cache) owner(op string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return "", &models.AuthError{Op: op, Err: auth.ErrNoSession}
	}
	return c.session.CurrentUser().ID, nil
}

func (c *Cache) statusLocked() Status {
	for ticket := range c.inflight {
		if ticket > c.committed {
			return StatusLoading
		}
	}
	return c.settled
}

func (c *Cache) snapshotLocked() Snapshot {
	return Snapshot{
		Records: append([]models.Application(nil), c.records...),
		Status:  c.statusLocked(),
		Err:     c.err,
		Version: c.version,
	}
}

// changedLocked records a state change and returns the snapshot to publish.
func (c *Cache) changedLocked() Snapshot {
	c.version++
	return c.snapshotLocked()
}

func (c *Cache) subscriberList() []func(Snapshot) {
	subs := make([]func(Snapshot), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func publish(subs []func(Snapshot), snapshot Snapshot) {
	for _, fn := range subs {
		fn(snapshot)
	}
}
