package object

// Table is a hash map from interned strings to values, used for global
// variable storage and for the string-interning set. It uses open addressing
// with linear probing. Keys compare by pointer identity, which interning
// makes equivalent to content equality; content comparison happens only in
// FindString, while interning identity is being established.
//
// A deleted slot leaves a tombstone (nil key, non-nil value) so that probe
// sequences over it remain valid. Tombstones count toward the load factor
// and are dropped when the table resizes.
type Table struct {
	count   int // live entries plus tombstones
	entries []entry
}

type entry struct {
	key   *String // nil for empty slots and tombstones
	value Value   // Nil for empty slots, non-Nil for tombstones
}

const tableMaxLoad = 0.75

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{}
}

// Size returns the number of live (non-tombstone) entries.
func (t *Table) Size() int {
	size := 0
	for i := range t.entries {
		if t.entries[i].key != nil {
			size++
		}
	}
	return size
}

// Capacity returns the current number of slots.
func (t *Table) Capacity() int {
	return len(t.entries)
}

// findEntry locates the slot for the given key within entries: either the
// slot holding the key, or the slot a new entry for the key should use. The
// first tombstone passed is remembered and reused in preference to a fresh
// empty slot, which keeps probe chains from growing after deletions.
func findEntry(entries []entry, key *String) *entry {
	index := key.hash % uint32(len(entries))
	var tombstone *entry
	for {
		e := &entries[index]
		if e.key == nil {
			if e.value == Nil {
				// Empty entry
				if tombstone != nil {
					return tombstone
				}
				return e
			}
			// A tombstone
			if tombstone == nil {
				tombstone = e
			}
		} else if e.key == key {
			return e
		}
		index = (index + 1) % uint32(len(entries))
	}
}

// Get returns the value stored for key, if present.
func (t *Table) Get(key *String) (Value, bool) {
	if t.count == 0 {
		return nil, false
	}
	e := findEntry(t.entries, key)
	if e.key == nil {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key, returning true if the key was newly inserted
// and false if an existing entry was updated.
func (t *Table) Set(key *String, value Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*tableMaxLoad {
		t.adjustCapacity(growCapacity(len(t.entries)))
	}
	e := findEntry(t.entries, key)
	isNewKey := e.key == nil
	if isNewKey && e.value == Nil {
		// Reusing a tombstone does not change the count
		t.count++
	}
	e.key = key
	e.value = value
	return isNewKey
}

// Delete removes the entry for key, returning true if it was present. The
// slot becomes a tombstone rather than being compacted.
func (t *Table) Delete(key *String) bool {
	if t.count == 0 {
		return false
	}
	e := findEntry(t.entries, key)
	if e.key == nil {
		return false
	}
	e.key = nil
	e.value = True
	return true
}

// AddAll copies every live entry of t into to.
func (t *Table) AddAll(to *Table) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.key != nil {
			to.Set(e.key, e.value)
		}
	}
}

// FindString returns the interned string matching the given content and
// hash, if one exists. This is the only operation that compares string
// content; it is used while establishing interning identity, before a
// *String for the content exists.
func (t *Table) FindString(content string, hash uint32) *String {
	if t.count == 0 {
		return nil
	}
	index := hash % uint32(len(t.entries))
	for {
		e := &t.entries[index]
		if e.key == nil {
			// Stop at a truly empty, non-tombstone slot
			if e.value == Nil {
				return nil
			}
		} else if len(e.key.value) == len(content) &&
			e.key.hash == hash &&
			e.key.value == content {
			return e.key
		}
		index = (index + 1) % uint32(len(t.entries))
	}
}

// adjustCapacity rebuilds the table at the given capacity. Tombstones are
// not carried over and the count is recomputed from the live entries, which
// keeps load-factor accounting correct across delete/resize cycles.
func (t *Table) adjustCapacity(capacity int) {
	entries := make([]entry, capacity)
	for i := range entries {
		entries[i].value = Nil
	}
	t.count = 0
	for i := range t.entries {
		e := &t.entries[i]
		if e.key == nil {
			continue
		}
		dest := findEntry(entries, e.key)
		dest.key = e.key
		dest.value = e.value
		t.count++
	}
	t.entries = entries
}

func growCapacity(capacity int) int {
	if capacity < 8 {
		return 8
	}
	return capacity * 2
}
