package coverstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/hexboundary/internal/boundary"
	"github.com/banshee-data/hexboundary/internal/hexgrid"
	"github.com/banshee-data/hexboundary/internal/monitoring"
	"github.com/banshee-data/hexboundary/internal/planar"
	"github.com/banshee-data/hexboundary/internal/timeutil"
)

// ErrNotFound is returned when no cover matches the lookup.
var ErrNotFound = errors.New("cover not found")

// Cover is a stored polygon guaranteed to contain every finest descendant
// of Cell.
type Cover struct {
	ID              string
	Cell            hexgrid.Cell
	IntermediateRes int
	BufferMeters    float64
	Method          boundary.Method
	BoundaryCells   int
	Ring            planar.Ring
	CreatedAt       time.Time
}

// NewCover wraps an assembler result for storage.
func NewCover(cell hexgrid.Cell, r boundary.Result) *Cover {
	return &Cover{
		Cell:            cell,
		IntermediateRes: r.IntermediateRes,
		BufferMeters:    r.BufferMeters,
		Method:          r.Method,
		BoundaryCells:   r.BoundaryCells,
		Ring:            r.Ring,
	}
}

// Bounds returns the cover's bounding box as min and max corners.
func (c *Cover) Bounds() (min, max planar.Point) {
	min = planar.Point{X: math.Inf(1), Y: math.Inf(1)}
	max = planar.Point{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, p := range c.Ring {
		min.X, min.Y = math.Min(min.X, p.X), math.Min(min.Y, p.Y)
		max.X, max.Y = math.Max(max.X, p.X), math.Max(max.Y, p.Y)
	}
	return min, max
}

// Store provides persistence for covers.
type Store struct {
	db    *sql.DB
	clock timeutil.Clock
}

// Open opens (or creates) the SQLite database at path and migrates it to
// the latest schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cover store: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	s := New(db)
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	monitoring.Logf("[coverstore] opened %s", path)
	return s, nil
}

// New wraps an already-open database. The caller is responsible for
// running MigrateUp.
func New(db *sql.DB) *Store {
	return &Store{db: db, clock: timeutil.RealClock{}}
}

// SetClock replaces the clock used for CreatedAt timestamps.
func (s *Store) SetClock(c timeutil.Clock) {
	s.clock = c
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores c. If a cover for the same cell, intermediate resolution and
// method exists it is replaced and keeps its ID; c.ID is set to the stored
// ID either way. A zero CreatedAt is filled from the store's clock.
func (s *Store) Put(c *Cover) error {
	return s.put(s.db, c)
}

// PutAll stores every cover in one transaction. If any Put fails nothing is
// written.
func (s *Store) PutAll(ctx context.Context, covers []*Cover) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cover transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range covers {
		if err := s.put(tx, c); err != nil {
			return fmt.Errorf("cover %s: %w", c.Cell, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit covers: %w", err)
	}
	return nil
}

// rowQuerier is satisfied by *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func (s *Store) put(q rowQuerier, c *Cover) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.clock.Now()
	}
	ring, err := encodeRing(c.Ring)
	if err != nil {
		return fmt.Errorf("encode cover ring: %w", err)
	}
	min, max := c.Bounds()

	query := `
		INSERT INTO covers (
			id, cell, resolution, intermediate_res, buffer_meters, method,
			boundary_cells, ring_geojson, min_lng, min_lat, max_lng, max_lat,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (cell, intermediate_res, method) DO UPDATE SET
			buffer_meters = excluded.buffer_meters,
			boundary_cells = excluded.boundary_cells,
			ring_geojson = excluded.ring_geojson,
			min_lng = excluded.min_lng,
			min_lat = excluded.min_lat,
			max_lng = excluded.max_lng,
			max_lat = excluded.max_lat,
			created_at = excluded.created_at
		RETURNING id
	`
	err = q.QueryRow(query,
		c.ID,
		c.Cell.String(),
		c.Cell.Resolution(),
		c.IntermediateRes,
		c.BufferMeters,
		string(c.Method),
		c.BoundaryCells,
		ring,
		min.X, min.Y, max.X, max.Y,
		c.CreatedAt.UnixNano(),
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("put cover: %w", err)
	}
	return nil
}

const selectCover = `
	SELECT id, cell, intermediate_res, buffer_meters, method,
	       boundary_cells, ring_geojson, created_at
	FROM covers
`

// Get returns the cover with the given ID.
func (s *Store) Get(id string) (*Cover, error) {
	row := s.db.QueryRow(selectCover+` WHERE id = ?`, id)
	c, err := scanCover(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get cover: %w", err)
	}
	return c, nil
}

// ForCell returns every cover stored for cell, finest intermediate
// resolution first.
func (s *Store) ForCell(cell hexgrid.Cell) ([]*Cover, error) {
	return s.query(selectCover+` WHERE cell = ? ORDER BY intermediate_res DESC, method`, cell.String())
}

// List returns every cover in insertion-time order.
func (s *Store) List() ([]*Cover, error) {
	return s.query(selectCover + ` ORDER BY created_at, id`)
}

// BoxContains returns covers whose bounding box contains the point. It is a
// coarse pre-filter; the point may still fall outside the ring.
func (s *Store) BoxContains(lng, lat float64) ([]*Cover, error) {
	return s.query(selectCover+`
		WHERE min_lng <= ? AND max_lng >= ? AND min_lat <= ? AND max_lat >= ?
		ORDER BY created_at, id`, lng, lng, lat, lat)
}

// Delete removes the cover with the given ID.
func (s *Store) Delete(id string) error {
	result, err := s.db.Exec("DELETE FROM covers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete cover: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete cover rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *Store) query(query string, args ...any) ([]*Cover, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list covers: %w", err)
	}
	defer rows.Close()

	var covers []*Cover
	for rows.Next() {
		c, err := scanCover(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cover: %w", err)
		}
		covers = append(covers, c)
	}
	return covers, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCover(row scanner) (*Cover, error) {
	var (
		c         Cover
		cell      string
		method    string
		ring      string
		createdAt int64
	)
	err := row.Scan(&c.ID, &cell, &c.IntermediateRes, &c.BufferMeters, &method,
		&c.BoundaryCells, &ring, &createdAt)
	if err != nil {
		return nil, err
	}
	if c.Cell, err = hexgrid.ParseCell(cell); err != nil {
		return nil, err
	}
	if c.Ring, err = decodeRing([]byte(ring)); err != nil {
		return nil, fmt.Errorf("decode ring of %s: %w", c.ID, err)
	}
	c.Method = boundary.Method(method)
	c.CreatedAt = time.Unix(0, createdAt)
	return &c, nil
}

func encodeRing(r planar.Ring) (string, error) {
	data, err := geojson.NewGeometry(orb.Polygon{boundary.OrbRing(r)}).MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeRing(data []byte) (planar.Ring, error) {
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, err
	}
	poly, ok := g.Geometry().(orb.Polygon)
	if !ok || len(poly) == 0 {
		return nil, fmt.Errorf("expected polygon geometry, got %s", g.Type)
	}
	return boundary.RingFromOrb(poly[0]), nil
}
