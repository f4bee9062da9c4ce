package ledger

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Key addresses a record inside a Store. Kind groups records of one type;
// Attrs become the composite key attributes.
type Key struct {
	Kind  string
	Attrs []string
}

// K builds a Key.
func K(kind string, attrs ...string) Key {
	return Key{Kind: kind, Attrs: attrs}
}

// FormatID renders an id as 16 lowercase hex digits. The fixed width keeps
// composite keys collision-free and makes lexical order match numeric order.
func FormatID(id uint64) string {
	return fmt.Sprintf("%016x", id)
}

// ParseID reverses FormatID.
func ParseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid encoded id %q: %w", s, err)
	}
	return id, nil
}

// Store is a registry's view of the world state. Every key it touches lives
// under its namespace; no registry reads another's namespace.
type Store struct {
	tx        *Tx
	namespace string
}

// Store scopes tx to namespace.
func (tx *Tx) Store(namespace string) *Store {
	return &Store{tx: tx, namespace: namespace}
}

// Tx returns the transaction the store writes through.
func (s *Store) Tx() *Tx { return s.tx }

func (s *Store) objectType(kind string) string {
	return s.namespace + "/" + kind
}

func (s *Store) key(k Key) (string, error) {
	key, err := s.tx.stub.CreateCompositeKey(s.objectType(k.Kind), k.Attrs)
	if err != nil {
		return "", fmt.Errorf("failed to create %s key %v: %w", s.objectType(k.Kind), k.Attrs, err)
	}
	return key, nil
}

// Get decodes the record at k into v. It reports false when no record exists.
func (s *Store) Get(k Key, v any) (bool, error) {
	key, err := s.key(k)
	if err != nil {
		return false, err
	}
	b, err := s.tx.getState(key)
	if err != nil {
		return false, err
	}
	if b == nil {
		return false, nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s %v: %w", s.objectType(k.Kind), k.Attrs, err)
	}
	return true, nil
}

// Put encodes v as JSON and buffers it at k.
func (s *Store) Put(k Key, v any) error {
	key, err := s.key(k)
	if err != nil {
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s %v: %w", s.objectType(k.Kind), k.Attrs, err)
	}
	return s.tx.putState(key, b)
}

// Has reports whether a record exists at k.
func (s *Store) Has(k Key) (bool, error) {
	key, err := s.key(k)
	if err != nil {
		return false, err
	}
	b, err := s.tx.getState(key)
	if err != nil {
		return false, err
	}
	return b != nil, nil
}

// Delete buffers removal of the record at k. Deleting a missing key is a no-op.
func (s *Store) Delete(k Key) error {
	key, err := s.key(k)
	if err != nil {
		return err
	}
	s.tx.delState(key)
	return nil
}

// Entry is one record returned by Scan.
type Entry struct {
	Attrs []string
	Value []byte
}

// Scan returns every record of kind whose attributes start with attrs, in key order.
func (s *Store) Scan(kind string, attrs ...string) ([]Entry, error) {
	rows, err := s.tx.scan(s.objectType(kind), attrs)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		_, keyAttrs, err := s.tx.stub.SplitCompositeKey(row.key)
		if err != nil {
			return nil, fmt.Errorf("failed to split key %q: %w", row.key, err)
		}
		entries = append(entries, Entry{Attrs: keyAttrs, Value: row.value})
	}
	return entries, nil
}

// Next advances the named counter and returns its new value. Counters start at 1
// and never repeat for the lifetime of the namespace.
func (s *Store) Next(counter string) (uint64, error) {
	k := K("seq", counter)
	var current uint64
	if _, err := s.Get(k, &current); err != nil {
		return 0, err
	}
	current++
	if err := s.Put(k, current); err != nil {
		return 0, err
	}
	return current, nil
}
