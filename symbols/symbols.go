// Package symbols provides the ordered symbol set referenced by every
// monomial operation in the library.
//
// A Set is an ordered, duplicate-free sequence of variable names, kept
// sorted at all times. Sets are value types: once a Set has been published
// to more than one term it must be treated as immutable, so every mutation
// path (Add, Merge) is copy-on-write and returns a new Set.
package symbols

import (
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/tbellamy/epicycle/errs"
)

// Symbol is an immutable variable name. Symbols are ordered by name and
// equality is name equality.
type Symbol string

// Set is an ordered sequence of unique Symbols.
// The zero value is the empty set and ready to use.
//
// Invariant: the backing slice is strictly increasing, with no duplicates.
type Set struct {
	names []Symbol
}

// NewSet builds a Set from the given names. The input is copied, sorted and
// deduplicated, so the resulting Set always satisfies the ordering invariant.
func NewSet(names ...Symbol) Set {
	if len(names) == 0 {
		return Set{}
	}
	tmp := make([]Symbol, len(names))
	copy(tmp, names)
	sort.Slice(tmp, func(i, j int) bool { return tmp[i] < tmp[j] })
	out := tmp[:1]
	for _, s := range tmp[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return Set{names: out}
}

// Len returns the number of symbols in the set.
func (s Set) Len() int { return len(s.names) }

// At returns the symbol at position i. It panics if i is out of range, like
// a slice index.
func (s Set) At(i int) Symbol { return s.names[i] }

// Index returns the position of sym in the set, or -1 if absent.
func (s Set) Index(sym Symbol) int {
	i := sort.Search(len(s.names), func(i int) bool { return s.names[i] >= sym })
	if i < len(s.names) && s.names[i] == sym {
		return i
	}
	return -1
}

// Contains reports whether sym is in the set.
func (s Set) Contains(sym Symbol) bool { return s.Index(sym) >= 0 }

// Add returns a new Set with sym inserted at its sorted position. The
// receiver is not modified. Inserting a symbol already present fails with
// an InvalidArgument error.
func (s Set) Add(sym Symbol) (Set, error) {
	i := sort.Search(len(s.names), func(i int) bool { return s.names[i] >= sym })
	if i < len(s.names) && s.names[i] == sym {
		return Set{}, errs.NewInvalidArgument("symbol %q already present in set", string(sym))
	}
	out := make([]Symbol, 0, len(s.names)+1)
	out = append(out, s.names[:i]...)
	out = append(out, sym)
	out = append(out, s.names[i:]...)
	return Set{names: out}, nil
}

// Merge returns the sorted union of s and other. Neither input is modified.
func (s Set) Merge(other Set) Set {
	out := make([]Symbol, 0, len(s.names)+len(other.names))
	i, j := 0, 0
	for i < len(s.names) && j < len(other.names) {
		switch {
		case s.names[i] < other.names[j]:
			out = append(out, s.names[i])
			i++
		case s.names[i] > other.names[j]:
			out = append(out, other.names[j])
			j++
		default:
			out = append(out, s.names[i])
			i++
			j++
		}
	}
	out = append(out, s.names[i:]...)
	out = append(out, other.names[j:]...)
	return Set{names: out}
}

// IsSupersetOf reports whether every symbol of other is contained in s.
func (s Set) IsSupersetOf(other Set) bool {
	i, j := 0, 0
	for j < len(other.names) {
		for i < len(s.names) && s.names[i] < other.names[j] {
			i++
		}
		if i >= len(s.names) || s.names[i] != other.names[j] {
			return false
		}
		i++
		j++
	}
	return true
}

// Equal reports whether two sets contain exactly the same symbols.
func (s Set) Equal(other Set) bool {
	if len(s.names) != len(other.names) {
		return false
	}
	for i := range s.names {
		if s.names[i] != other.names[i] {
			return false
		}
	}
	return true
}

// Fingerprint computes the xxHash64 of the set's names. Two sets with equal
// fingerprints are equal with overwhelming probability; the fingerprint is
// used to cheaply detect that many terms share one reference set.
func (s Set) Fingerprint() uint64 {
	var d xxhash.Digest
	d.Reset()
	for _, n := range s.names {
		_, _ = d.WriteString(string(n))
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

// String renders the set as a comma-separated list, e.g. "{x, y, z}".
func (s Set) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, n := range s.names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(string(n))
	}
	b.WriteByte('}')
	return b.String()
}
