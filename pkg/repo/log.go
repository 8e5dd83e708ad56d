package repo

import (
	"container/heap"
	"fmt"
	"math"
	"strings"
	"time"

	"grit/pkg/diff"
	"grit/pkg/object"
)

// LogOptions is the filter bundle for history traversal. The zero value
// walks everything from HEAD.
type LogOptions struct {
	// From is the starting commit; HEAD when zero.
	From object.Oid
	// MaxCount limits the number of yielded commits; 0 means unlimited.
	MaxCount int
	// Author keeps commits whose author name or email contains the
	// substring.
	Author string
	// Since keeps commits with author time >= Since (unix seconds).
	Since *int64
	// Until keeps commits with author time <= Until (unix seconds).
	Until *int64
	// Paths keeps commits that touch any of these paths (exact file or
	// directory prefix).
	Paths []string
	// FirstParent follows only the mainline parent at merges.
	FirstParent bool
}

// ParseDate parses a filter date, either "YYYY-MM-DD" or
// "YYYY-MM-DDTHH:MM:SS", interpreted as UTC.
func ParseDate(s string) (int64, error) {
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, fmt.Errorf("invalid date %q (expected YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS)", s)
}

// pendingCommit is a heap entry: a commit waiting to be visited, keyed by
// author timestamp.
type pendingCommit struct {
	oid  object.Oid
	time int64
}

// commitHeap is a max-heap on (time, oid descending) so emission is
// newest-first with a deterministic tiebreak.
type commitHeap []pendingCommit

func (h commitHeap) Len() int { return len(h) }

func (h commitHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time > h[j].time
	}
	return h[i].oid.Hex() > h[j].oid.Hex()
}

func (h commitHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *commitHeap) Push(x any) { *h = append(*h, x.(pendingCommit)) }

func (h *commitHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// LogIterator walks the commit DAG newest-first, yielding each reachable
// commit at most once. It is pull-driven; abandoning it releases nothing.
type LogIterator struct {
	repo    *Repository
	pending commitHeap
	visited map[object.Oid]bool
	opts    LogOptions
	yielded int
	done    bool
}

// Log walks history from HEAD with no filters.
func (r *Repository) Log() (*LogIterator, error) {
	head, err := r.Head()
	if err != nil {
		return nil, err
	}
	return r.LogFrom(head.Oid)
}

// LogFrom walks history from a specific commit with no filters.
func (r *Repository) LogFrom(start object.Oid) (*LogIterator, error) {
	return r.LogWithOptions(LogOptions{From: start})
}

// LogWithOptions walks history applying the given filter bundle.
func (r *Repository) LogWithOptions(opts LogOptions) (*LogIterator, error) {
	start := opts.From
	if start.IsZero() {
		head, err := r.Head()
		if err != nil {
			return nil, err
		}
		start = head.Oid
	}

	it := &LogIterator{
		repo:    r,
		visited: make(map[object.Oid]bool),
		opts:    opts,
	}
	// MaxInt64 guarantees the starting commit emerges first regardless of
	// its author time.
	heap.Push(&it.pending, pendingCommit{oid: start, time: math.MaxInt64})
	return it, nil
}

// Next returns the next matching commit. A read failure is returned as the
// item for that pull; the iterator stays usable and the following pull may
// succeed. Exhaustion is signaled by (nil, nil).
func (it *LogIterator) Next() (*object.Commit, error) {
	if it.done {
		return nil, nil
	}

	for it.pending.Len() > 0 {
		entry := heap.Pop(&it.pending).(pendingCommit)
		if it.visited[entry.oid] {
			continue
		}
		it.visited[entry.oid] = true

		commit, err := it.repo.store.ReadCommit(entry.oid)
		if err != nil {
			return nil, err
		}

		// Parents are enqueued whether or not the commit itself matches,
		// so filtered-out commits do not sever ancestry.
		it.enqueueParents(commit)

		matched, err := it.matches(commit)
		if err != nil {
			return nil, err
		}
		if !matched {
			continue
		}

		it.yielded++
		if it.opts.MaxCount > 0 && it.yielded >= it.opts.MaxCount {
			it.done = true
		}
		return commit, nil
	}

	it.done = true
	return nil, nil
}

// Collect drains the iterator, stopping at the first error.
func (it *LogIterator) Collect() ([]*object.Commit, error) {
	var commits []*object.Commit
	for {
		commit, err := it.Next()
		if err != nil {
			return commits, err
		}
		if commit == nil {
			return commits, nil
		}
		commits = append(commits, commit)
	}
}

// enqueueParents pushes the commit's parents (only the mainline one under
// FirstParent). Each parent's own author time keys its heap position; a
// parent that cannot be read is still enqueued and surfaces its error when
// popped.
func (it *LogIterator) enqueueParents(c *object.Commit) {
	parents := c.Parents
	if it.opts.FirstParent && len(parents) > 1 {
		parents = parents[:1]
	}

	for _, parent := range parents {
		if it.visited[parent] {
			continue
		}
		t := int64(math.MinInt64)
		if pc, err := it.repo.store.ReadCommit(parent); err == nil {
			t = pc.Author.When
		}
		heap.Push(&it.pending, pendingCommit{oid: parent, time: t})
	}
}

// matches applies the author, time-window, and path filters.
func (it *LogIterator) matches(c *object.Commit) (bool, error) {
	if it.opts.Author != "" &&
		!strings.Contains(c.Author.Name, it.opts.Author) &&
		!strings.Contains(c.Author.Email, it.opts.Author) {
		return false, nil
	}
	if it.opts.Since != nil && c.Author.When < *it.opts.Since {
		return false, nil
	}
	if it.opts.Until != nil && c.Author.When > *it.opts.Until {
		return false, nil
	}
	if len(it.opts.Paths) > 0 {
		touched, err := it.commitTouchesPaths(c)
		if err != nil {
			return false, err
		}
		if !touched {
			return false, nil
		}
	}
	return true, nil
}

// commitTouchesPaths reports whether the commit changed any filtered path,
// comparing its tree against the first parent's tree (an empty tree for
// roots). A filter path matches a changed path exactly or as a directory
// prefix.
func (it *LogIterator) commitTouchesPaths(c *object.Commit) (bool, error) {
	current, err := it.repo.FlattenTree(c.Tree)
	if err != nil {
		return false, err
	}

	parentMap := map[string]diff.Entry{}
	if parent, ok := c.Parent(); ok {
		parentCommit, err := it.repo.store.ReadCommit(parent)
		if err != nil {
			return false, err
		}
		parentMap, err = it.repo.FlattenTree(parentCommit.Tree)
		if err != nil {
			return false, err
		}
	}

	changed := func(path string) bool {
		oldEntry, inOld := parentMap[path]
		newEntry, inNew := current[path]
		return inOld != inNew || oldEntry != newEntry
	}

	for path := range union(parentMap, current) {
		if !changed(path) {
			continue
		}
		for _, filter := range it.opts.Paths {
			if pathMatchesFilter(path, filter) {
				return true, nil
			}
		}
	}
	return false, nil
}

func union(a, b map[string]diff.Entry) map[string]struct{} {
	out := make(map[string]struct{}, len(a)+len(b))
	for p := range a {
		out[p] = struct{}{}
	}
	for p := range b {
		out[p] = struct{}{}
	}
	return out
}

// pathMatchesFilter reports whether changed path c falls under filter path
// p: equal, or inside the directory p (with or without a trailing slash).
func pathMatchesFilter(c, p string) bool {
	p = strings.TrimSuffix(normalizeSlash(p), "/")
	if p == "" {
		return true
	}
	return c == p || strings.HasPrefix(c, p+"/")
}
