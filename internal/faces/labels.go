package faces

import (
	"math/bits"
	"strconv"
	"strings"
)

// Label identifies one of the (at most six) boundary regions of a cell,
// each bordering one same-resolution neighbour. Valid labels are 1..6.
type Label uint8

// Valid reports whether l is in 1..6.
func (l Label) Valid() bool {
	return l >= 1 && l <= 6
}

// LabelSet is an unordered set of labels stored as a bitmask (bit i for
// label i). The zero value is the empty set: no boundary contact.
type LabelSet uint8

// AllLabels is {1,2,3,4,5,6}.
const AllLabels LabelSet = 0x7e

// NewLabelSet builds a set from labels; out-of-range labels are ignored.
func NewLabelSet(labels ...Label) LabelSet {
	var s LabelSet
	for _, l := range labels {
		s = s.Add(l)
	}
	return s
}

// Add returns s with l included.
func (s LabelSet) Add(l Label) LabelSet {
	if !l.Valid() {
		return s
	}
	return s | 1<<l
}

// Has reports whether l is in s.
func (s LabelSet) Has(l Label) bool {
	return l.Valid() && s&(1<<l) != 0
}

// Empty reports whether s has no labels, i.e. boundary contact is lost.
func (s LabelSet) Empty() bool {
	return s&AllLabels == 0
}

// Len returns the number of labels in s.
func (s LabelSet) Len() int {
	return bits.OnesCount8(uint8(s & AllLabels))
}

func (s LabelSet) Union(o LabelSet) LabelSet {
	return (s | o) & AllLabels
}

func (s LabelSet) Intersect(o LabelSet) LabelSet {
	return s & o & AllLabels
}

// SubsetOf reports whether every label of s is in o.
func (s LabelSet) SubsetOf(o LabelSet) bool {
	return s&^o&AllLabels == 0
}

// Labels returns the members of s in ascending order.
func (s LabelSet) Labels() []Label {
	out := make([]Label, 0, s.Len())
	for l := Label(1); l <= 6; l++ {
		if s.Has(l) {
			out = append(out, l)
		}
	}
	return out
}

// Ints returns the members of s as ints in ascending order.
func (s LabelSet) Ints() []int {
	out := make([]int, 0, s.Len())
	for _, l := range s.Labels() {
		out = append(out, int(l))
	}
	return out
}

// LabelSetFromInts builds a set from ints, rejecting anything outside 1..6.
func LabelSetFromInts(in []int) (LabelSet, error) {
	var s LabelSet
	for _, v := range in {
		if v < 1 || v > 6 {
			return 0, invalidArgf("face label %d out of range [1,6]", v)
		}
		s = s.Add(Label(v))
	}
	return s, nil
}

// String formats s as "{1,3,5}".
func (s LabelSet) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, l := range s.Labels() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(l)))
	}
	b.WriteByte('}')
	return b.String()
}
