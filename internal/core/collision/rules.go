// Package collision holds the default outcome for collisions between two
// ability kinds. Pairs are unordered: a rule added for (a, b) also answers
// lookups for (b, a) with the flags swapped.
package collision

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

type rule struct {
	first, second string
	removeFirst   bool
	removeSecond  bool
}

// Rules is immutable once built and safe for concurrent reads.
type Rules struct {
	table map[uint64][]rule
	size  int
}

// Empty has no rules; every lookup misses.
func Empty() *Rules {
	return &Rules{table: map[uint64][]rule{}}
}

func normalize(kind string) string { return strings.ToLower(kind) }

// pairKey hashes the pair in canonical order so (a, b) and (b, a) collide.
func pairKey(a, b string) (uint64, string, string) {
	if b < a {
		a, b = b, a
	}
	d := xxhash.New()
	_, _ = d.WriteString(a)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(b)
	return d.Sum64(), a, b
}

// Lookup returns the outcome for a collision between kinds a and b, with
// the flags in the order of the arguments.
func (r *Rules) Lookup(a, b string) (removeA, removeB, ok bool) {
	a, b = normalize(a), normalize(b)
	h, first, second := pairKey(a, b)
	for _, ru := range r.table[h] {
		if ru.first != first || ru.second != second {
			continue
		}
		if a == ru.first {
			return ru.removeFirst, ru.removeSecond, true
		}
		return ru.removeSecond, ru.removeFirst, true
	}
	return false, false, false
}

// Has reports whether any rule covers the pair.
func (r *Rules) Has(a, b string) bool {
	_, _, ok := r.Lookup(a, b)
	return ok
}

func (r *Rules) Len() int { return r.size }

func (r *Rules) put(a, b string, removeA, removeB bool) {
	a, b = normalize(a), normalize(b)
	h, first, second := pairKey(a, b)
	ru := rule{first: first, second: second, removeFirst: removeA, removeSecond: removeB}
	if first != a {
		ru.removeFirst, ru.removeSecond = removeB, removeA
	}
	bucket := r.table[h]
	for i := range bucket {
		if bucket[i].first == first && bucket[i].second == second {
			bucket[i] = ru
			return
		}
	}
	r.table[h] = append(bucket, ru)
	r.size++
}
