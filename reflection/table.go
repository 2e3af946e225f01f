package reflection

import (
	"fmt"
	"reflect"
)

// Entry is a single key/value pair of a metadata Table.
type Entry struct {
	Key   any
	Value any
}

// Table is an ordered, heterogeneous key/value store attached to descriptors.
// It is read-only once built. Duplicate keys are allowed; lookups return the
// first matching entry.
type Table struct {
	entries []Entry
}

// Metadata builds a Table from a flat list alternating keys and values:
//
//	reflection.Metadata("json", "width", "min", 0)
//
// An odd number of arguments is a configuration error and panics.
func Metadata(kv ...any) Table {
	if len(kv)%2 != 0 {
		panic(fmt.Sprintf("reflection: metadata needs key/value pairs, got %d values", len(kv)))
	}

	if len(kv) == 0 {
		return Table{}
	}

	entries := make([]Entry, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		entries = append(entries, Entry{Key: kv[i], Value: kv[i+1]})
	}

	return Table{entries: entries}
}

// Len returns the number of entries.
func (t Table) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the entries in declaration order.
func (t Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)

	return out
}

// ForEach calls visit for each entry in order until visit returns true.
// It reports whether iteration was stopped.
func (t Table) ForEach(visit func(Entry) bool) bool {
	for _, e := range t.entries {
		if visit(e) {
			return true
		}
	}

	return false
}

// Has reports whether some entry's key has the same type as key and compares
// equal to it.
func (t Table) Has(key any) bool {
	_, ok := t.Lookup(key)
	return ok
}

// Lookup returns the value of the first entry whose key matches key.
func (t Table) Lookup(key any) (any, bool) {
	for _, e := range t.entries {
		if keysEqual(e.Key, key) {
			return e.Value, true
		}
	}

	return nil, false
}

// GetMetadata returns the first value stored under key whose dynamic type is
// exactly V. A value of another type under the same key is skipped: interface
// satisfaction and conversions never count as a match.
func GetMetadata[V any](t Table, key any) (V, bool) {
	want := reflect.TypeFor[V]()

	for _, e := range t.entries {
		if !keysEqual(e.Key, key) {
			continue
		}

		if e.Value == nil || reflect.TypeOf(e.Value) != want {
			continue
		}

		return e.Value.(V), true
	}

	var zero V

	return zero, false
}

// keysEqual compares two keys by dynamic type, then by value. Keys that are
// not comparable (slices, maps, tables) fall back to deep equality.
func keysEqual(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}

	if ta == nil {
		return true
	}

	if ta.Comparable() {
		return a == b
	}

	return reflect.DeepEqual(a, b)
}
