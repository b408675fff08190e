// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/banshee-data/hexboundary/internal/planar"
)

// TB is the subset of testing.TB the assertions need.
type TB interface {
	Helper()
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
	Fatal(args ...any)
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertNear checks that got is within tol of want.
func AssertNear(t TB, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v ± %v", name, got, want, tol)
	}
}

// AssertRingClosed checks that r has at least four points and ends where it
// starts.
func AssertRingClosed(t TB, r planar.Ring) {
	t.Helper()
	if len(r) < 4 {
		t.Errorf("ring has %d points, want at least 4", len(r))
		return
	}
	if !r.IsClosed() {
		t.Errorf("ring not closed: first %v, last %v", r[0], r[len(r)-1])
	}
}

// AssertRingsEqual checks that two rings match point for point within tol.
func AssertRingsEqual(t TB, got, want planar.Ring, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("ring length = %d, want %d", len(got), len(want))
		return
	}
	for i := range got {
		if math.Abs(got[i].X-want[i].X) > tol || math.Abs(got[i].Y-want[i].Y) > tol {
			t.Errorf("point %d = %v, want %v", i, got[i], want[i])
			return
		}
	}
}

// TempDBPath returns a path for a SQLite file inside a per-test directory.
func TempDBPath(t testing.TB) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "covers.db")
}

// Square returns a closed axis-aligned square ring with lower-left corner
// (x, y) and the given side.
func Square(x, y, side float64) planar.Ring {
	return planar.Ring{
		{X: x, Y: y},
		{X: x + side, Y: y},
		{X: x + side, Y: y + side},
		{X: x, Y: y + side},
		{X: x, Y: y},
	}
}
