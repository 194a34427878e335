package state

import "sort"

// Store is the scratch space shared by the states of one chain. It is
// cleared every time the chain advances, except for keys the leaving state
// marked with Propagate.
type Store struct {
	values    map[string]any
	propagate map[string]struct{}
}

func newStore(seed map[string]any) *Store {
	s := &Store{values: make(map[string]any, len(seed)), propagate: make(map[string]struct{})}
	for k, v := range seed {
		s.values[k] = v
	}
	return s
}

func (s *Store) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *Store) Set(key string, value any) {
	s.values[key] = value
}

func (s *Store) Delete(key string) {
	delete(s.values, key)
	delete(s.propagate, key)
}

func (s *Store) Len() int {
	return len(s.values)
}

// Keys returns the stored keys in order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Propagate keeps keys across the next advance only.
func (s *Store) Propagate(keys ...string) {
	for _, k := range keys {
		s.propagate[k] = struct{}{}
	}
}

func (s *Store) advance() {
	for k := range s.values {
		if _, keep := s.propagate[k]; !keep {
			delete(s.values, k)
		}
	}
	clear(s.propagate)
}

// Value reads key as T.
func Value[T any](s *Store, key string) (T, bool) {
	v, ok := s.values[key]
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}
