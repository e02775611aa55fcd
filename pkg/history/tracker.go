package history

import (
	"time"

	"tableflip.dev/nodewatch/pkg/device"
	"tableflip.dev/nodewatch/pkg/timeutil"
)

// Tracker owns the selected device and its rolling buffers. Updates only feed
// the buffers while a device is selected and present in the update.
type Tracker struct {
	// Now stamps series labels. Defaults to time.Now.
	Now func() time.Time

	selected string
	active   bool

	activity *ActivityLog
	series   *Series
}

// NewTracker returns a tracker with no selection.
func NewTracker() *Tracker {
	return &Tracker{
		Now:      time.Now,
		activity: NewActivityLog(ActivityCapacity),
		series:   NewSeries(SeriesCapacity),
	}
}

// Select makes rec the tracked device. Both buffers are cleared and then
// seeded from rec, so a reselection never shows another device's history.
func (t *Tracker) Select(rec device.Record) {
	t.selected = rec.MAC
	t.active = true
	t.activity.Reset()
	t.series.Reset()
	t.record(rec)
}

// Clear ends the selection. Buffers keep their contents until the next Select
// but stop receiving updates.
func (t *Tracker) Clear() {
	t.selected = ""
	t.active = false
}

// Selected returns the tracked MAC.
func (t *Tracker) Selected() (string, bool) {
	return t.selected, t.active
}

// Observe routes the selected device's record from u into the buffers. It
// reports whether anything was recorded.
func (t *Tracker) Observe(u device.Update) bool {
	if !t.active {
		return false
	}
	rec, ok := u.Find(t.selected)
	if !ok {
		return false
	}
	t.record(rec)
	return true
}

// Activity returns the domain log newest first.
func (t *Tracker) Activity() []string { return t.activity.Domains() }

// Series returns the bandwidth samples oldest first.
func (t *Tracker) Series() []Point { return t.series.Points() }

// SeriesLen returns the number of bandwidth samples held.
func (t *Tracker) SeriesLen() int { return t.series.Len() }

func (t *Tracker) record(rec device.Record) {
	t.activity.Observe(rec.Domains)
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	t.series.Append(now().Format(timeutil.LabelLayout), rec.UpRate, rec.DownRate)
}
