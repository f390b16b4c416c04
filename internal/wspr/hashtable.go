package wspr

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/cwsl/wsprgo/internal/geo"
)

/*
 * Hash table + callsign resolver (C8, minus the unpacking math which lives
 * in message.go). spec.md §9 calls for a small {lookup, insert} interface
 * with in-memory, file-backed, or test-stub implementations, passed as a
 * parameter rather than held as an implicit singleton.
 */

// HashTable resolves a 15-bit callsign hash to the last-seen plain callsign.
// Implementations MUST be safe for concurrent use (spec.md §5).
type HashTable interface {
	Lookup(hash uint16) (callsign string, ok bool)
	Insert(hash uint16, callsign string)
	Len() int
}

// UnresolvedCallsign is the placeholder used when a Type 2/3 decode
// references a hash with no known entry (spec.md §7, error case 5).
const UnresolvedCallsign = "<...>"

// MemHashTable is the default process-lifetime, in-memory implementation.
type MemHashTable struct {
	mu      sync.RWMutex
	entries map[uint16]string
}

// NewMemHashTable returns an empty in-memory hash table.
func NewMemHashTable() *MemHashTable {
	return &MemHashTable{entries: make(map[uint16]string)}
}

func (t *MemHashTable) Lookup(hash uint16) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	call, ok := t.entries[hash]
	return call, ok
}

func (t *MemHashTable) Insert(hash uint16, callsign string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[hash] = callsign
}

// Len reports the number of resolved hash entries currently stored.
func (t *MemHashTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// FileHashTable wraps a MemHashTable with persistence to a simple
// newline-delimited "hash callsign" text file, loaded on open and appended
// to with one line on every insert. Intended for a long-running daemon that wants hash
// resolution to survive a restart; spec.md's core has no opinion on this,
// it is purely a collaborator behind the HashTable interface.
type FileHashTable struct {
	mem  *MemHashTable
	path string
	mu   sync.Mutex
}

// OpenFileHashTable loads path if it exists, or starts empty.
func OpenFileHashTable(path string) (*FileHashTable, error) {
	t := &FileHashTable{mem: NewMemHashTable(), path: path}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("hashtable: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			continue
		}
		hash, err := strconv.ParseUint(parts[0], 10, 16)
		if err != nil {
			continue
		}
		t.mem.Insert(uint16(hash), parts[1])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("hashtable: read %s: %w", path, err)
	}
	return t, nil
}

func (t *FileHashTable) Lookup(hash uint16) (string, bool) {
	return t.mem.Lookup(hash)
}

// Len reports the number of resolved hash entries currently held in memory.
func (t *FileHashTable) Len() int {
	return t.mem.Len()
}

func (t *FileHashTable) Insert(hash uint16, callsign string) {
	t.mem.Insert(hash, callsign)

	t.mu.Lock()
	defer t.mu.Unlock()
	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "%d %s\n", hash, callsign)
}

// hashOf returns the 15-bit callsign hash of call (geo.CallsignHash).
func hashOf(call string) uint16 {
	return geo.CallsignHash(call)
}
