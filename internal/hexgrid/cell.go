package hexgrid

import (
	"errors"
	"fmt"
	"strings"

	"github.com/uber/h3-go/v4"
)

// MaxResolution is the finest resolution of the grid.
const MaxResolution = 15

// ErrInvalidCell is returned when a string does not encode a valid cell.
var ErrInvalidCell = errors.New("invalid cell index")

const (
	digitBits     = 3
	digitMask     = 0x7
	unusedDigit   = 7
	resOffset     = 52
	resMask       = 0xf
	baseCellShift = 45
	baseCellMask  = 0x7f
)

// Cell is an opaque grid cell identifier. The zero value is not a valid cell.
type Cell uint64

// String returns the canonical lower-case hex encoding.
func (c Cell) String() string {
	return h3.Cell(c).String()
}

// Resolution reads the resolution field of the index.
func (c Cell) Resolution() int {
	return int((uint64(c) >> resOffset) & resMask)
}

// BaseCell reads the base cell number (0..121) of the index.
func (c Cell) BaseCell() int {
	return int((uint64(c) >> baseCellShift) & baseCellMask)
}

// Digit returns the child position (0..6) the cell occupies at resolution
// res relative to its ancestor at res-1. Resolutions finer than the cell's
// own hold the unused marker 7.
func (c Cell) Digit(res int) int {
	if res < 1 || res > MaxResolution {
		return unusedDigit
	}
	shift := uint((MaxResolution - res) * digitBits)
	return int((uint64(c) >> shift) & digitMask)
}

// ParseCell decodes a hex-encoded index and checks it is a valid cell.
func ParseCell(s string) (Cell, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidCell)
	}
	c := h3.Cell(h3.IndexFromString(raw))
	if !c.IsValid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCell, s)
	}
	return Cell(c), nil
}

// MustParseCell is ParseCell for fixtures; it panics on bad input.
func MustParseCell(s string) Cell {
	c, err := ParseCell(s)
	if err != nil {
		panic(err)
	}
	return c
}
