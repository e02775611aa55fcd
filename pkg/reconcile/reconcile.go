package reconcile

import (
	"errors"
	"fmt"
	"sync"

	"tableflip.dev/nodewatch/pkg/device"
)

// ErrInvalidUpdate wraps data-shape errors. A rejected update leaves the
// reconciler untouched.
var ErrInvalidUpdate = errors.New("reconcile: invalid update")

// Filter controls which authoritative records are visible.
type Filter struct {
	ActiveOnly bool
}

// Hides reports whether rec is suppressed by the filter.
func (f Filter) Hides(rec device.Record) bool {
	return f.ActiveOnly && rec.Stale
}

// Entry is a rendered row. Entries are created once per key and refreshed in
// place; Revision increments on every refresh so views can skip redraws.
type Entry struct {
	Key      string
	Record   device.Record
	Hidden   bool
	Revision int
}

// Diff lists the keys touched by one reconciliation pass.
type Diff struct {
	Created []string
	Updated []string
	Hidden  []string
	Removed []string
}

// Empty reports whether the pass changed nothing visible.
func (d Diff) Empty() bool {
	return len(d.Created) == 0 && len(d.Updated) == 0 && len(d.Hidden) == 0 && len(d.Removed) == 0
}

// Reconciler keeps the authoritative device set and the rendered entry set in
// step. The authoritative set is replaced wholesale by each update; rendered
// entries are diffed against it so unchanged rows are left alone. Every
// consumer reads through the projection methods, never the maps.
type Reconciler struct {
	mu sync.RWMutex

	filter Filter

	records map[string]device.Record
	order   []string

	entries  map[string]*Entry
	rendered []string

	stats  device.GlobalStats
	active int
	seen   bool
}

// New returns an empty reconciler using filter f.
func New(f Filter) *Reconciler {
	return &Reconciler{
		filter:  f,
		records: make(map[string]device.Record),
		entries: make(map[string]*Entry),
	}
}

// Apply replaces the authoritative set with u and reconciles the rendered
// entries against it.
func (r *Reconciler) Apply(u device.Update) (Diff, error) {
	if err := u.Validate(); err != nil {
		return Diff{}, fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	records := make(map[string]device.Record, len(u.Devices))
	order := make([]string, 0, len(u.Devices))
	for _, d := range u.Devices {
		records[d.MAC] = d.Clone()
		order = append(order, d.MAC)
	}
	r.records = records
	r.order = order
	r.stats = u.Stats
	r.active = u.ActiveCount()
	r.seen = true

	return r.reconcileLocked(), nil
}

// SetFilter changes visibility and re-reconciles against the cached
// authoritative set. No data is discarded: hidden records reappear with
// their latest attributes once the filter is lifted.
func (r *Reconciler) SetFilter(f Filter) Diff {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.filter == f {
		return Diff{}
	}
	r.filter = f
	if !r.seen {
		return Diff{}
	}
	return r.reconcileLocked()
}

func (r *Reconciler) reconcileLocked() Diff {
	var diff Diff
	for _, key := range r.order {
		rec := r.records[key]
		e, exists := r.entries[key]

		if r.filter.Hides(rec) {
			if exists && !e.Hidden {
				e.Hidden = true
				diff.Hidden = append(diff.Hidden, key)
			}
			continue
		}

		if !exists {
			r.entries[key] = &Entry{Key: key, Record: rec.Clone()}
			r.rendered = append(r.rendered, key)
			diff.Created = append(diff.Created, key)
			continue
		}

		revealed := e.Hidden
		e.Hidden = false
		if revealed || !e.Record.Equal(rec) {
			e.Record = rec.Clone()
			e.Revision++
			diff.Updated = append(diff.Updated, key)
		}
	}
	diff.Removed = r.removeAbsentLocked()
	return diff
}

// removeAbsentLocked deletes rendered entries whose key is missing from the
// authoritative set, hidden entries included.
func (r *Reconciler) removeAbsentLocked() []string {
	var removed []string
	kept := r.rendered[:0]
	for _, key := range r.rendered {
		if _, ok := r.records[key]; ok {
			kept = append(kept, key)
			continue
		}
		delete(r.entries, key)
		removed = append(removed, key)
	}
	r.rendered = kept
	return removed
}

// Filter returns the active filter.
func (r *Reconciler) Filter() Filter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filter
}

// Visible returns copies of the visible entries in rendered order.
func (r *Reconciler) Visible() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.rendered))
	for _, key := range r.rendered {
		e := r.entries[key]
		if e.Hidden {
			continue
		}
		cp := *e
		cp.Record = e.Record.Clone()
		out = append(out, cp)
	}
	return out
}

// Keys returns every rendered key, hidden or not, in rendered order.
func (r *Reconciler) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.rendered...)
}

// Entry returns a copy of the rendered entry for key.
func (r *Reconciler) Entry(key string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[key]
	if !ok {
		return Entry{}, false
	}
	cp := *e
	cp.Record = e.Record.Clone()
	return cp, true
}

// Lookup returns the authoritative record for mac regardless of filter.
func (r *Reconciler) Lookup(mac string) (device.Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[mac]
	if !ok {
		return device.Record{}, false
	}
	return rec.Clone(), true
}

// Records returns the authoritative records in update order.
func (r *Reconciler) Records() []device.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]device.Record, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.records[key].Clone())
	}
	return out
}

// Stats returns the global stats from the latest update.
func (r *Reconciler) Stats() device.GlobalStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats
}

// Len returns the number of devices in the latest update, rendered or not.
func (r *Reconciler) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// ActiveCount returns the number of non-stale devices in the latest update.
func (r *Reconciler) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Seen reports whether any update has been applied.
func (r *Reconciler) Seen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.seen
}
