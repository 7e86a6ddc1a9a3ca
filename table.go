package wee

// Table is an open-addressed, linear-probed hash table keyed by interned
// strings (identity comparison suffices since equal content implies equal
// identity). Capacity is always a power of two so probing can mask instead
// of mod. It plays the same "name to slot" role gothird's symbols type plays
// for FIRST's dictionary, generalized to carry arbitrary Values and to
// support deletion via tombstones, as Wee's globals, class method tables,
// instance field tables, and the VM's string intern table all need.
type Table struct {
	entries []tableEntry
	count   int // occupied slots, including tombstones
}

type tableEntry struct {
	key   *ObjString
	value Value
}

const tableMaxLoad = 0.75

// Len reports the number of live (non-tombstone) entries.
func (t *Table) Len() int {
	n := 0
	for _, e := range t.entries {
		if e.key != nil && !isTombstone(e) {
			n++
		}
	}
	return n
}

func isTombstone(e tableEntry) bool {
	return e.key == nil && e.value.kind == KindBool && e.value.b
}

// Get returns the value stored for key, if any.
func (t *Table) Get(key *ObjString) (Value, bool) {
	if len(t.entries) == 0 {
		return NilValue, false
	}
	e := findEntry(t.entries, key)
	if e.key == nil {
		return NilValue, false
	}
	return e.value, true
}

// Set stores value under key, growing the table first if needed. Reports
// true if this inserted a brand new key.
func (t *Table) Set(key *ObjString, value Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*tableMaxLoad {
		t.grow(growCapacity(len(t.entries)))
	}

	idx := findEntryIndex(t.entries, key)
	entry := &t.entries[idx]
	isNewKey := entry.key == nil
	if isNewKey && !isTombstone(*entry) {
		t.count++
	}

	entry.key = key
	entry.value = value
	return isNewKey
}

// Delete removes key, leaving a tombstone so later probes can walk past it.
// Reports whether key was present.
func (t *Table) Delete(key *ObjString) bool {
	if len(t.entries) == 0 {
		return false
	}
	idx := findEntryIndex(t.entries, key)
	entry := &t.entries[idx]
	if entry.key == nil {
		return false
	}
	entry.key = nil
	entry.value = BoolValue(true) // tombstone: key=nil, value=true
	return true
}

// AddAll copies every live entry of from into t, overwriting any existing
// keys. Used by the INHERIT opcode to copy (not alias) a superclass's
// method table, so later subclass METHOD definitions may overwrite entries
// without corrupting the parent's table.
func (t *Table) AddAll(from *Table) {
	for _, e := range from.entries {
		if e.key != nil {
			t.Set(e.key, e.value)
		}
	}
}

// findString looks up an interned string by raw content, used only by the
// interning path (before an ObjString for the candidate content exists).
func (t *Table) findString(chars string, hash uint32) *ObjString {
	if len(t.entries) == 0 {
		return nil
	}
	mask := uint32(len(t.entries) - 1)
	idx := hash & mask
	for {
		e := &t.entries[idx]
		if e.key == nil {
			if !isTombstone(*e) {
				return nil
			}
		} else if e.key.Hash == hash && e.key.Chars == chars {
			return e.key
		}
		idx = (idx + 1) & mask
	}
}

func findEntry(entries []tableEntry, key *ObjString) tableEntry {
	idx := findEntryIndex(entries, key)
	return entries[idx]
}

// findEntryIndex returns the index key occupies, or the first tombstone/
// empty slot on its probe sequence (reusing tombstones keeps chains short).
func findEntryIndex(entries []tableEntry, key *ObjString) uint32 {
	mask := uint32(len(entries) - 1)
	idx := key.Hash & mask
	var tombstone int = -1
	for {
		e := &entries[idx]
		if e.key == nil {
			if !isTombstone(*e) {
				if tombstone >= 0 {
					return uint32(tombstone)
				}
				return idx
			}
			if tombstone < 0 {
				tombstone = int(idx)
			}
		} else if e.key == key {
			return idx
		}
		idx = (idx + 1) & mask
	}
}

func growCapacity(capacity int) int {
	if capacity < 8 {
		return 8
	}
	return capacity * 2
}

// grow rebuilds the table at the given capacity, dropping tombstones and
// recounting length from scratch.
func (t *Table) grow(capacity int) {
	entries := make([]tableEntry, capacity)
	count := 0
	for _, e := range t.entries {
		if e.key == nil {
			continue
		}
		idx := findEntryIndex(entries, e.key)
		entries[idx] = e
		count++
	}
	t.entries = entries
	t.count = count
}

// each iterates over every live entry, used by the GC to mark reachable
// keys/values and to prune unmarked keys from the intern table.
func (t *Table) each(fn func(key *ObjString, value Value)) {
	for _, e := range t.entries {
		if e.key != nil && !isTombstone(e) {
			fn(e.key, e.value)
		}
	}
}
