package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical assembly defaults file.
const DefaultConfigPath = "config/boundary.defaults.json"

const (
	defaultIntermediateRes     = 10
	defaultCirclePoints        = 32
	defaultAutoBufferResOffset = 4
	defaultMetersPerDegree     = 111320.0
	maxResolution              = 15
)

// AssemblyConfig holds the knobs of the boundary polygon assembler. Fields
// are pointers so a partial JSON file leaves the rest at their defaults.
type AssemblyConfig struct {
	// Resolution the merged boundary is built from before buffering.
	IntermediateRes *int `json:"intermediate_res,omitempty"`
	// Buffer distance in meters. Nil or negative derives it from the
	// average edge length at the intermediate resolution.
	BufferMeters *float64 `json:"buffer_meters,omitempty"`
	// Hull of boundary-child vertices instead of the exact union.
	UseConvexHull *bool `json:"use_convex_hull,omitempty"`
	// Vertices per full circle in round buffer joins and ends.
	CirclePoints *int `json:"circle_points,omitempty"`
	// How many resolutions finer the edge length for a single-cell auto
	// buffer is taken from.
	AutoBufferResOffset *int     `json:"auto_buffer_res_offset,omitempty"`
	MetersPerDegree     *float64 `json:"meters_per_degree,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyAssemblyConfig returns an AssemblyConfig with every field nil, so
// every getter returns its default.
func EmptyAssemblyConfig() *AssemblyConfig {
	return &AssemblyConfig{}
}

// DefaultAssemblyConfig returns a config with every field populated with
// the built-in default. BufferMeters stays nil (automatic).
func DefaultAssemblyConfig() *AssemblyConfig {
	return &AssemblyConfig{
		IntermediateRes:     ptrInt(defaultIntermediateRes),
		UseConvexHull:       ptrBool(false),
		CirclePoints:        ptrInt(defaultCirclePoints),
		AutoBufferResOffset: ptrInt(defaultAutoBufferResOffset),
		MetersPerDegree:     ptrFloat64(defaultMetersPerDegree),
	}
}

// LoadAssemblyConfig loads an AssemblyConfig from a JSON file.
// The file must have a .json extension and be under 1MB. Fields omitted from
// the file keep their defaults.
func LoadAssemblyConfig(path string) (*AssemblyConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyAssemblyConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents. Panics if the file cannot be loaded, intended
// for test setup.
func MustLoadDefaultConfig() *AssemblyConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadAssemblyConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the set fields are in range.
func (c *AssemblyConfig) Validate() error {
	if c.IntermediateRes != nil {
		if *c.IntermediateRes < 1 || *c.IntermediateRes > maxResolution {
			return fmt.Errorf("intermediate_res must be between 1 and %d, got %d", maxResolution, *c.IntermediateRes)
		}
	}

	if c.CirclePoints != nil && *c.CirclePoints < 4 {
		return fmt.Errorf("circle_points must be at least 4, got %d", *c.CirclePoints)
	}

	if c.AutoBufferResOffset != nil {
		if *c.AutoBufferResOffset < 0 || *c.AutoBufferResOffset > maxResolution {
			return fmt.Errorf("auto_buffer_res_offset must be between 0 and %d, got %d", maxResolution, *c.AutoBufferResOffset)
		}
	}

	if c.MetersPerDegree != nil && *c.MetersPerDegree <= 0 {
		return fmt.Errorf("meters_per_degree must be positive, got %f", *c.MetersPerDegree)
	}

	return nil
}

// GetIntermediateRes returns the intermediate_res value or the default.
func (c *AssemblyConfig) GetIntermediateRes() int {
	if c.IntermediateRes == nil {
		return defaultIntermediateRes
	}
	return *c.IntermediateRes
}

// GetBufferMeters returns the buffer distance, or -1 for automatic.
func (c *AssemblyConfig) GetBufferMeters() float64 {
	if c.BufferMeters == nil || *c.BufferMeters < 0 {
		return -1
	}
	return *c.BufferMeters
}

// GetUseConvexHull returns the use_convex_hull value or the default.
func (c *AssemblyConfig) GetUseConvexHull() bool {
	if c.UseConvexHull == nil {
		return false // default: exact union
	}
	return *c.UseConvexHull
}

// GetCirclePoints returns the circle_points value or the default.
func (c *AssemblyConfig) GetCirclePoints() int {
	if c.CirclePoints == nil {
		return defaultCirclePoints
	}
	return *c.CirclePoints
}

// GetAutoBufferResOffset returns the auto_buffer_res_offset value or the default.
func (c *AssemblyConfig) GetAutoBufferResOffset() int {
	if c.AutoBufferResOffset == nil {
		return defaultAutoBufferResOffset
	}
	return *c.AutoBufferResOffset
}

// GetMetersPerDegree returns the meters_per_degree value or the default.
func (c *AssemblyConfig) GetMetersPerDegree() float64 {
	if c.MetersPerDegree == nil {
		return defaultMetersPerDegree
	}
	return *c.MetersPerDegree
}
