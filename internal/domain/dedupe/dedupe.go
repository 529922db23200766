// Package dedupe tracks record identifiers seen during one normalization pass.
package dedupe

// Deduper records seen record IDs so repeated rows are counted once.
//
// A Deduper belongs to a single pass and is not safe for concurrent use;
// every pass builds its own.
type Deduper interface {
	// SeenAndRecord reports whether id was already seen, recording it if not.
	// Empty IDs are never considered duplicates.
	SeenAndRecord(id string) bool

	// Unrecord forgets id so a later occurrence is accepted again.
	Unrecord(id string)

	// Size returns the number of remembered IDs.
	Size() int
}

// inMemoryDeduper keeps IDs in a map; in bounded mode a FIFO ring of the
// insertion order decides which ID is forgotten first.
type inMemoryDeduper struct {
	seen    map[string]int // id -> position in order (bounded mode)
	order   []string       // ring buffer of ids, bounded mode only
	next    int
	maxSize int
}

// NewInMemoryDeduper creates a new deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}
	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]int)
	if d.maxSize > 0 {
		d.order = make([]string, 0, d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := d.seen[id]; ok {
		return true
	}

	if d.maxSize <= 0 {
		d.seen[id] = -1
		return false
	}

	if len(d.order) < d.maxSize {
		d.seen[id] = len(d.order)
		d.order = append(d.order, id)
		return false
	}

	// Ring is full: overwrite the oldest slot.
	if old := d.order[d.next]; old != "" {
		delete(d.seen, old)
	}
	d.order[d.next] = id
	d.seen[id] = d.next
	d.next = (d.next + 1) % d.maxSize
	return false
}

func (d *inMemoryDeduper) Unrecord(id string) {
	pos, ok := d.seen[id]
	if !ok {
		return
	}
	delete(d.seen, id)
	if pos >= 0 && pos < len(d.order) {
		d.order[pos] = ""
	}
}

func (d *inMemoryDeduper) Size() int {
	return len(d.seen)
}
