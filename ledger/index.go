package ledger

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Index is an insertion-ordered set of string members stored under a Store.
// Each member has a position record (member -> sequence number) and an order
// record (sequence number -> member), so Add, Remove and Contains touch a fixed
// number of keys and Members is one range scan in insertion order.
type Index struct {
	store *Store
	name  string
	scope []string
}

// Index returns the named index, optionally scoped (e.g. per student or per course).
func (s *Store) Index(name string, scope ...string) *Index {
	return &Index{store: s, name: name, scope: append([]string(nil), scope...)}
}

func (ix *Index) attrs(last string) []string {
	out := make([]string, 0, len(ix.scope)+1)
	out = append(out, ix.scope...)
	return append(out, last)
}

func (ix *Index) posKey(member string) Key {
	return K("ix."+ix.name+".pos", ix.attrs(member)...)
}

func (ix *Index) ordKey(seq uint64) Key {
	return K("ix."+ix.name+".ord", ix.attrs(FormatID(seq))...)
}

func (ix *Index) seqKey() Key {
	return K("ix."+ix.name+".seq", ix.scope...)
}

// Add appends member. It reports false if member was already present.
func (ix *Index) Add(member string) (bool, error) {
	if member == "" {
		return false, fmt.Errorf("index %s: member cannot be empty", ix.name)
	}
	var pos uint64
	found, err := ix.store.Get(ix.posKey(member), &pos)
	if err != nil {
		return false, err
	}
	if found {
		return false, nil
	}

	var seq uint64
	if _, err := ix.store.Get(ix.seqKey(), &seq); err != nil {
		return false, err
	}
	seq++
	if err := ix.store.Put(ix.seqKey(), seq); err != nil {
		return false, err
	}
	if err := ix.store.Put(ix.posKey(member), seq); err != nil {
		return false, err
	}
	if err := ix.store.Put(ix.ordKey(seq), member); err != nil {
		return false, err
	}
	return true, nil
}

// Remove drops member. It reports false if member was not present.
func (ix *Index) Remove(member string) (bool, error) {
	var pos uint64
	found, err := ix.store.Get(ix.posKey(member), &pos)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if err := ix.store.Delete(ix.posKey(member)); err != nil {
		return false, err
	}
	if err := ix.store.Delete(ix.ordKey(pos)); err != nil {
		return false, err
	}
	return true, nil
}

// Contains reports whether member is present.
func (ix *Index) Contains(member string) (bool, error) {
	return ix.store.Has(ix.posKey(member))
}

// Members returns every member in insertion order. The result is never nil.
func (ix *Index) Members() ([]string, error) {
	entries, err := ix.store.Scan("ix."+ix.name+".ord", ix.scope...)
	if err != nil {
		return nil, err
	}
	members := make([]string, 0, len(entries))
	for _, e := range entries {
		var m string
		if err := json.Unmarshal(e.Value, &m); err != nil {
			return nil, fmt.Errorf("index %s [%s]: corrupt order record: %w", ix.name, strings.Join(e.Attrs, ","), err)
		}
		members = append(members, m)
	}
	return members, nil
}

// Empty reports whether the index has no members.
func (ix *Index) Empty() (bool, error) {
	members, err := ix.Members()
	if err != nil {
		return false, err
	}
	return len(members) == 0, nil
}

// AddID, RemoveID, ContainsID and IDs treat members as FormatID-encoded ids.

func (ix *Index) AddID(id uint64) (bool, error) { return ix.Add(FormatID(id)) }

func (ix *Index) RemoveID(id uint64) (bool, error) { return ix.Remove(FormatID(id)) }

func (ix *Index) ContainsID(id uint64) (bool, error) { return ix.Contains(FormatID(id)) }

func (ix *Index) IDs() ([]uint64, error) {
	members, err := ix.Members()
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(members))
	for _, m := range members {
		id, err := ParseID(m)
		if err != nil {
			return nil, fmt.Errorf("index %s: %w", ix.name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
