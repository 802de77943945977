package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

// Blocklist is the set of vacancy ids never to apply to. Each mutation is
// written to disk immediately as {"blocked": [ids...]} in ascending order.
type Blocklist struct {
	path string

	mu  sync.Mutex
	ids mapset.Set[int]
}

type blocklistFile struct {
	Blocked []int `json:"blocked"`
}

// OpenBlocklist loads the blocklist at path. A missing file is an empty
// blocklist.
func OpenBlocklist(path string) (*Blocklist, error) {
	b := &Blocklist{path: path, ids: mapset.NewThreadUnsafeSet[int]()}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return b, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(raw) == 0 {
		return b, nil
	}
	var f blocklistFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrCorrupt, err)
	}
	b.ids.Append(f.Blocked...)
	return b, nil
}

// Path returns the file location.
func (b *Blocklist) Path() string {
	return b.path
}

// Contains reports whether id is blocked.
func (b *Blocklist) Contains(id int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ids.Contains(id)
}

// Len returns the number of blocked ids.
func (b *Blocklist) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ids.Cardinality()
}

// Add blocks ids and saves. It returns how many were new.
func (b *Blocklist) Add(ids ...int) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	added := b.ids.Append(ids...)
	if added == 0 {
		return 0, nil
	}
	return added, b.save()
}

// Remove unblocks ids and saves. It returns how many were present.
func (b *Blocklist) Remove(ids ...int) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	removed := 0
	for _, id := range ids {
		if b.ids.Contains(id) {
			b.ids.Remove(id)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, b.save()
}

// Clear unblocks everything and saves.
func (b *Blocklist) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ids.Clear()
	return b.save()
}

// List returns the blocked ids in ascending order.
func (b *Blocklist) List() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sorted()
}

func (b *Blocklist) sorted() []int {
	ids := b.ids.ToSlice()
	slices.Sort(ids)
	return ids
}

// save must be called with mu held.
func (b *Blocklist) save() error {
	raw, err := json.MarshalIndent(blocklistFile{Blocked: b.sorted()}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode blocklist: %w", err)
	}
	return writeFileAtomic(b.path, append(raw, '\n'))
}
