package view

import (
	"sync"

	"github.com/khrees2412/jobtracker/internal/cache"
	"github.com/khrees2412/jobtracker/pkg/models"
)

// Snapshot is one computed dashboard state.
type Snapshot struct {
	Filter  Filter               `json:"filter"`
	Visible []models.Application `json:"applications"`
	Stats   models.Stats         `json:"stats"`
	Status  cache.Status         `json:"-"`
	Err     error                `json:"-"`
}

// Dashboard keeps the derived view current. It recomputes whenever the
// records, the status filter or the query change.
type Dashboard struct {
	mu       sync.Mutex
	records  []models.Application
	status   cache.Status
	err      error
	version  uint64
	filter   Filter
	current  Snapshot
	onChange []func(Snapshot)
}

func NewDashboard(filter Filter) *Dashboard {
	d := &Dashboard{filter: filter}
	d.recomputeLocked()
	return d
}

// Attach feeds the dashboard from c and returns a func that detaches it.
func (d *Dashboard) Attach(c *cache.Cache) func() {
	d.mu.Lock()
	d.version = 0
	d.mu.Unlock()
	d.setState(c.Snapshot())
	return c.Subscribe(d.setState)
}

// OnChange registers fn to run after every recompute.
func (d *Dashboard) OnChange(fn func(Snapshot)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onChange = append(d.onChange, fn)
}

func (d *Dashboard) SetRecords(records []models.Application) {
	d.update(func() { d.records = append([]models.Application(nil), records...) })
}

func (d *Dashboard) SetStatusFilter(status string) {
	d.update(func() { d.filter.Status = status })
}

func (d *Dashboard) SetQuery(query string) {
	d.update(func() { d.filter.Query = query })
}

// Snapshot returns the latest computed state.
func (d *Dashboard) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// setState applies a cache snapshot unless a newer one was already applied.
func (d *Dashboard) setState(s cache.Snapshot) {
	d.apply(func() bool {
		if s.Version < d.version {
			return false
		}
		d.version = s.Version
		d.records = s.Records
		d.status = s.Status
		d.err = s.Err
		return true
	})
}

func (d *Dashboard) update(change func()) {
	d.apply(func() bool {
		change()
		return true
	})
}

func (d *Dashboard) apply(change func() bool) {
	d.mu.Lock()
	if !change() {
		d.mu.Unlock()
		return
	}
	d.recomputeLocked()
	snapshot := d.current
	listeners := append([]func(Snapshot){}, d.onChange...)
	d.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}

func (d *Dashboard) recomputeLocked() {
	d.current = Snapshot{
		Filter:  d.filter,
		Visible: Apply(d.records, d.filter),
		Stats:   Statistics(d.records),
		Status:  d.status,
		Err:     d.err,
	}
}
