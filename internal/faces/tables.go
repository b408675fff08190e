package faces

// Shape distinguishes hexagonal cells from the twelve pentagons per
// resolution. Tables are selected by the shape of the parent cell.
type Shape uint8

const (
	Hexagon Shape = iota
	Pentagon
)

func (s Shape) String() string {
	if s == Pentagon {
		return "pentagon"
	}
	return "hexagon"
}

// FaceMap maps a child's boundary label to its parent's boundary label for
// one (parity, digit, shape). Index is the child label; 0 means no entry.
type FaceMap [7]Label

// Apply maps every label of s and returns the union of the images. Labels
// without an entry are dropped.
func (m FaceMap) Apply(s LabelSet) LabelSet {
	var out LabelSet
	for l := Label(1); l <= 6; l++ {
		if s.Has(l) {
			out = out.Add(m[l])
		}
	}
	return out
}

// Len returns the number of child labels with an entry.
func (m FaceMap) Len() int {
	n := 0
	for l := 1; l <= 6; l++ {
		if m[l] != 0 {
			n++
		}
	}
	return n
}

// ReverseMap maps a parent's boundary label to the set of child labels that
// lie on it for one (parity, digit, shape).
type ReverseMap [7]LabelSet

// Apply maps every parent label of s to its child labels and unions them.
func (m ReverseMap) Apply(s LabelSet) LabelSet {
	var out LabelSet
	for l := Label(1); l <= 6; l++ {
		if s.Has(l) {
			out = out.Union(m[l])
		}
	}
	return out
}

// Empty reports whether no parent label reaches this child.
func (m ReverseMap) Empty() bool {
	for l := 1; l <= 6; l++ {
		if !m[l].Empty() {
			return false
		}
	}
	return true
}

// hexagonTables is indexed [parity][digit]. Parity is the child's
// resolution mod 2. Digit 0 (centre child) is empty.
var hexagonTables = [2][7]FaceMap{
	0: {
		1: {1: 1, 2: 3, 3: 1},
		2: {2: 2, 4: 6, 6: 2},
		3: {2: 3, 3: 3, 6: 2},
		4: {1: 5, 4: 4, 5: 4},
		5: {1: 5, 3: 1, 5: 5},
		6: {4: 6, 5: 4, 6: 6},
	},
	1: {
		1: {1: 3, 3: 3, 5: 1},
		2: {2: 6, 3: 2, 6: 6},
		3: {1: 3, 2: 2, 3: 2},
		4: {4: 5, 5: 5, 6: 4},
		5: {1: 1, 4: 5, 5: 1},
		6: {2: 6, 4: 4, 6: 4},
	},
}

// forwardTables is indexed [shape][parity][digit]. A pentagon parent's
// children keep the hexagon digit layout with the K-axis subsequence
// deleted, so its table is the hexagon table with digit 1 left empty.
var forwardTables = [2][2][7]FaceMap{
	Hexagon:  hexagonTables,
	Pentagon: withoutDigit(hexagonTables, 1),
}

func withoutDigit(t [2][7]FaceMap, digit int) [2][7]FaceMap {
	for parity := range t {
		t[parity][digit] = FaceMap{}
	}
	return t
}

// reverseTables is the inverse of forwardTables, built once at init so the
// two can never disagree.
var reverseTables = invert(forwardTables)

func invert(fwd [2][2][7]FaceMap) [2][2][7]ReverseMap {
	var rev [2][2][7]ReverseMap
	for shape := range fwd {
		for parity := range fwd[shape] {
			for digit := range fwd[shape][parity] {
				m := fwd[shape][parity][digit]
				for child := Label(1); child <= 6; child++ {
					if parent := m[child]; parent.Valid() {
						rev[shape][parity][digit][parent] = rev[shape][parity][digit][parent].Add(child)
					}
				}
			}
		}
	}
	return rev
}

// Forward returns the child→parent face map for a child at a resolution of
// the given parity, occupying digit under a parent of the given shape.
// Out-of-range digits return an empty map.
func Forward(parity, digit int, shape Shape) FaceMap {
	if digit < 0 || digit > 6 || shape > Pentagon {
		return FaceMap{}
	}
	return forwardTables[shape][parity&1][digit]
}

// Reverse returns the parent→child face map for the same key as Forward.
func Reverse(parity, digit int, shape Shape) ReverseMap {
	if digit < 0 || digit > 6 || shape > Pentagon {
		return ReverseMap{}
	}
	return reverseTables[shape][parity&1][digit]
}

// Digits returns the child digits a parent of the given shape has.
func Digits(shape Shape) []int {
	if shape == Pentagon {
		return []int{0, 2, 3, 4, 5, 6}
	}
	return []int{0, 1, 2, 3, 4, 5, 6}
}
