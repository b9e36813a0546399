package kvlog

import "sync"

// Entry is one applied (key, value) pair, identified by its 1-based Version.
type Entry struct {
	Key   string
	Value string
}

// Log is a mutex-guarded, append-only sequence of Entry. Version numbers are
// 1-based: the Nth append has Version N and lives at index N-1.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
}

// Append adds an entry and returns the version it was assigned (len after
// the append). This is the only way entries enter the log: there is no
// insert, update, or delete.
func (l *Log) Append(key, value string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Key: key, Value: value})
	return uint64(len(l.entries))
}

// Version returns the current version, i.e. the number of entries applied
// so far.
func (l *Log) Version() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return uint64(len(l.entries))
}

// At returns the entry for the given 1-based version. ok is false if version
// is out of range ([1, Version()]).
func (l *Log) At(version uint64) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if version < 1 || version > uint64(len(l.entries)) {
		return Entry{}, false
	}
	return l.entries[version-1], true
}

// Entries returns a copy of the full log, in version order. The returned
// slice is unaffected by later appends.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}
