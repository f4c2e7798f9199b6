// Package traverse implements bounded breadth-first exploration of the
// issue dependency graph.
package traverse

import (
	"container/list"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/gtempel/jiragraph/internal/jira"
)

// ArrowDirection selects how an edge is drawn.
type ArrowDirection string

const (
	// Forward draws the arrowhead at the target end.
	Forward ArrowDirection = "forward"
	// Back draws the arrowhead at the source end, used for inward links.
	Back ArrowDirection = "back"
)

// Edge is a discovered relationship between two issues.
type Edge struct {
	From      string
	To        string
	Label     string
	Direction ArrowDirection
}

// edgeKey identifies an edge for deduplication. Direction is excluded:
// the same (from, to, label) relationship is never emitted twice even
// when discovered from both endpoints.
type edgeKey struct {
	from  string
	to    string
	label string
}

// Entry is what the visited set records per fetched key: either the
// issue data or the fetch error that ended the attempt.
type Entry struct {
	Issue *jira.Issue // nil when Err is set
	Depth int         // hop distance at which the key was discovered
	Err   error
}

// VisitedSet maps issue keys to entries in insertion order. Each key is
// fetched at most once regardless of how many links reference it.
type VisitedSet struct {
	entries *orderedmap.OrderedMap[string, *Entry]
}

// NewVisitedSet creates an empty visited set.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{entries: orderedmap.NewOrderedMap[string, *Entry]()}
}

// Add records a successfully fetched issue.
func (v *VisitedSet) Add(issue *jira.Issue, depth int) {
	v.entries.Set(issue.Key, &Entry{Issue: issue, Depth: depth})
}

// AddError marks a key as visited-with-error so it is never retried.
func (v *VisitedSet) AddError(key string, depth int, err error) {
	v.entries.Set(key, &Entry{Depth: depth, Err: err})
}

// Has returns true if the key has been visited (with or without data).
func (v *VisitedSet) Has(key string) bool {
	_, ok := v.entries.Get(key)
	return ok
}

// Get returns the entry for a key, or nil if the key was never visited.
func (v *VisitedSet) Get(key string) *Entry {
	entry, ok := v.entries.Get(key)
	if !ok {
		return nil
	}
	return entry
}

// Len returns the number of visited keys.
func (v *VisitedSet) Len() int {
	return v.entries.Len()
}

// Keys returns all visited keys in insertion order.
func (v *VisitedSet) Keys() []string {
	return v.entries.Keys()
}

// Each calls fn for every entry in insertion order.
func (v *VisitedSet) Each(fn func(key string, entry *Entry)) {
	for el := v.entries.Front(); el != nil; el = el.Next() {
		fn(el.Key, el.Value)
	}
}

// frontierItem pairs a key awaiting fetch with its hop distance.
type frontierItem struct {
	key   string
	depth int
}

// Frontier is the FIFO queue of keys awaiting fetch. A key never enters
// the queue twice: Push tracks pending membership.
type Frontier struct {
	queue   *list.List
	pending map[string]bool
}

// NewFrontier creates an empty frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		queue:   list.New(),
		pending: make(map[string]bool),
	}
}

// Push enqueues a key at the given depth. Returns false if the key is
// already pending.
func (f *Frontier) Push(key string, depth int) bool {
	if f.pending[key] {
		return false
	}
	f.pending[key] = true
	f.queue.PushBack(frontierItem{key: key, depth: depth})
	return true
}

// Pop dequeues the next key. Returns false when the frontier is empty.
func (f *Frontier) Pop() (frontierItem, bool) {
	if f.queue.Len() == 0 {
		return frontierItem{}, false
	}
	elem := f.queue.Front()
	f.queue.Remove(elem)
	item := elem.Value.(frontierItem)
	return item, true
}

// Len returns the number of queued keys.
func (f *Frontier) Len() int {
	return f.queue.Len()
}

// Result is what one traversal produces: the visited issues and the
// deduplicated edge list, both in discovery order.
type Result struct {
	Visited *VisitedSet
	Edges   []Edge
}
