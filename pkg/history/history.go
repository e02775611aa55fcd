package history

const (
	// ActivityCapacity bounds the domain activity log.
	ActivityCapacity = 20
	// SeriesCapacity bounds the bandwidth series.
	SeriesCapacity = 20
)

// ActivityLog keeps the most recently first-seen domains, newest first and
// without duplicates.
type ActivityLog struct {
	ring *Ring[string]
}

// NewActivityLog returns an empty log holding at most capacity domains.
func NewActivityLog(capacity int) *ActivityLog {
	return &ActivityLog{ring: NewRing[string](capacity)}
}

// Observe records each domain not already present, in delivered order, at
// the front of the log. Domains already present keep their position.
// It returns how many domains were added.
func (l *ActivityLog) Observe(domains []string) int {
	added := 0
	for _, d := range domains {
		if d == "" || l.Contains(d) {
			continue
		}
		l.ring.PushFront(d)
		added++
	}
	return added
}

// Contains reports whether domain is in the log.
func (l *ActivityLog) Contains(domain string) bool {
	return l.ring.IndexFunc(func(s string) bool { return s == domain }) >= 0
}

// Domains returns the log newest first.
func (l *ActivityLog) Domains() []string { return l.ring.Items() }

// Len returns the number of logged domains.
func (l *ActivityLog) Len() int { return l.ring.Len() }

// Reset empties the log.
func (l *ActivityLog) Reset() { l.ring.Reset() }

// Point is one bandwidth sample.
type Point struct {
	Label string
	Up    float64
	Down  float64
}

// Series is a FIFO of bandwidth samples. The label, up and down sequences are
// stored as one record per sample so they can never differ in length.
type Series struct {
	ring *Ring[Point]
}

// NewSeries returns an empty series holding at most capacity samples.
func NewSeries(capacity int) *Series {
	return &Series{ring: NewRing[Point](capacity)}
}

// Append adds a sample, evicting the oldest one when full.
func (s *Series) Append(label string, up, down float64) {
	s.ring.PushBack(Point{Label: label, Up: up, Down: down})
}

// Points returns the samples oldest first.
func (s *Series) Points() []Point { return s.ring.Items() }

// Labels returns the sample labels oldest first.
func (s *Series) Labels() []string {
	out := make([]string, s.ring.Len())
	for i := range out {
		out[i] = s.ring.At(i).Label
	}
	return out
}

// Up returns the upload rates oldest first.
func (s *Series) Up() []float64 {
	out := make([]float64, s.ring.Len())
	for i := range out {
		out[i] = s.ring.At(i).Up
	}
	return out
}

// Down returns the download rates oldest first.
func (s *Series) Down() []float64 {
	out := make([]float64, s.ring.Len())
	for i := range out {
		out[i] = s.ring.At(i).Down
	}
	return out
}

// Len returns the number of samples.
func (s *Series) Len() int { return s.ring.Len() }

// Reset empties the series.
func (s *Series) Reset() { s.ring.Reset() }
