package observability

import (
	"fmt"
	"sync"
	"time"
)

// JournalEntry is a single timestamped line of agent activity.
type JournalEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// Journal is an append-only activity log with subscriber fan-out.
// Entries are kept newest-first up to a fixed cap; subscribers receive
// every entry appended after they subscribe.
type Journal struct {
	mu      sync.Mutex
	entries []JournalEntry
	subs    map[int]chan JournalEntry
	nextSub int
	cap     int
	now     func() time.Time
}

// DefaultJournalCap bounds in-memory journal history.
const DefaultJournalCap = 200

// NewJournal creates a Journal retaining at most cap entries.
// A cap of zero or less uses DefaultJournalCap.
func NewJournal(cap int) *Journal {
	if cap <= 0 {
		cap = DefaultJournalCap
	}
	return &Journal{
		subs: make(map[int]chan JournalEntry),
		cap:  cap,
		now:  time.Now,
	}
}

// Logf appends a formatted entry to the journal and fans it out to
// subscribers. Slow subscribers are skipped rather than blocked on.
func (j *Journal) Logf(format string, args ...any) {
	entry := JournalEntry{
		Timestamp: j.clock()(),
		Message:   fmt.Sprintf(format, args...),
	}

	j.mu.Lock()
	j.entries = append([]JournalEntry{entry}, j.entries...)
	if len(j.entries) > j.cap {
		j.entries = j.entries[:j.cap]
	}
	for _, ch := range j.subs {
		select {
		case ch <- entry:
		default:
		}
	}
	j.mu.Unlock()
}

// Entries returns a copy of the journal, newest first.
func (j *Journal) Entries() []JournalEntry {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]JournalEntry, len(j.entries))
	copy(out, j.entries)
	return out
}

// Subscribe registers for future entries. The returned cancel function
// must be called to release the subscription.
func (j *Journal) Subscribe() (<-chan JournalEntry, func()) {
	j.mu.Lock()
	defer j.mu.Unlock()

	id := j.nextSub
	j.nextSub++
	ch := make(chan JournalEntry, 64)
	j.subs[id] = ch

	cancel := func() {
		j.mu.Lock()
		defer j.mu.Unlock()
		if sub, ok := j.subs[id]; ok {
			delete(j.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// SetClock overrides the journal's time source. Useful for testing.
func (j *Journal) SetClock(now func() time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.now = now
}

func (j *Journal) clock() func() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.now == nil {
		return time.Now
	}
	return j.now
}
