package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultInputSubdir is the directory, next to the executable, that holds
// the node CSV files when no input directory is configured.
const DefaultInputSubdir = "ExtractedNodeRawDataCSV"

// AnalysisConfig represents the settings of one heading analysis run.
// Every field is optional; the Get* methods supply the defaults. The same
// keys are accepted from JSON and YAML files.
type AnalysisConfig struct {
	// Input/output locations
	InputDir  *string `json:"input_dir,omitempty" yaml:"input_dir,omitempty"`
	OutputDir *string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`

	// Aggregation params
	Samples                 *int     `json:"samples,omitempty" yaml:"samples,omitempty"`
	ReconstructionThreshold *float64 `json:"reconstruction_threshold,omitempty" yaml:"reconstruction_threshold,omitempty"`

	// Combined figure node range (inclusive)
	CombinedMinNode *int `json:"combined_min_node,omitempty" yaml:"combined_min_node,omitempty"`
	CombinedMaxNode *int `json:"combined_max_node,omitempty" yaml:"combined_max_node,omitempty"`

	// Figure params
	ImageWidthInches  *float64 `json:"image_width_in,omitempty" yaml:"image_width_in,omitempty"`
	ImageHeightInches *float64 `json:"image_height_in,omitempty" yaml:"image_height_in,omitempty"`
	OpenBrowser       *bool    `json:"open_browser,omitempty" yaml:"open_browser,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyAnalysisConfig returns an AnalysisConfig with all fields set to nil.
func EmptyAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{}
}

// DefaultAnalysisConfig returns a config with every field populated with its
// default. Directories stay empty: they default relative to the executable.
func DefaultAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		InputDir:                ptrString(""),
		OutputDir:               ptrString(""),
		Samples:                 ptrInt(100),
		ReconstructionThreshold: ptrFloat64(0.01),
		CombinedMinNode:         ptrInt(3),
		CombinedMaxNode:         ptrInt(12),
		ImageWidthInches:        ptrFloat64(14),
		ImageHeightInches:       ptrFloat64(11),
		OpenBrowser:             ptrBool(false),
	}
}

// LoadAnalysisConfig loads an AnalysisConfig from a .json, .yaml or .yml
// file. Fields omitted from the file keep their defaults.
func LoadAnalysisConfig(path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := filepath.Ext(cleanPath)
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
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

	cfg := EmptyAnalysisConfig()
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *AnalysisConfig) Validate() error {
	if c.Samples != nil && *c.Samples <= 0 {
		return fmt.Errorf("samples must be positive, got %d", *c.Samples)
	}

	if c.ReconstructionThreshold != nil && *c.ReconstructionThreshold <= 0 {
		return fmt.Errorf("reconstruction_threshold must be positive, got %f", *c.ReconstructionThreshold)
	}

	if c.GetCombinedMinNode() > c.GetCombinedMaxNode() {
		return fmt.Errorf("combined_min_node (%d) must not exceed combined_max_node (%d)",
			c.GetCombinedMinNode(), c.GetCombinedMaxNode())
	}

	if c.ImageWidthInches != nil && *c.ImageWidthInches <= 0 {
		return fmt.Errorf("image_width_in must be positive, got %f", *c.ImageWidthInches)
	}
	if c.ImageHeightInches != nil && *c.ImageHeightInches <= 0 {
		return fmt.Errorf("image_height_in must be positive, got %f", *c.ImageHeightInches)
	}

	return nil
}

// GetInputDir returns the configured input directory, or DefaultInputSubdir
// under baseDir.
func (c *AnalysisConfig) GetInputDir(baseDir string) string {
	if c.InputDir == nil || *c.InputDir == "" {
		return filepath.Join(baseDir, DefaultInputSubdir)
	}
	return *c.InputDir
}

// GetOutputDir returns the configured output directory, or baseDir.
func (c *AnalysisConfig) GetOutputDir(baseDir string) string {
	if c.OutputDir == nil || *c.OutputDir == "" {
		return baseDir
	}
	return *c.OutputDir
}

// GetSamples returns the samples value or the default.
func (c *AnalysisConfig) GetSamples() int {
	if c.Samples == nil {
		return 100
	}
	return *c.Samples
}

// GetReconstructionThreshold returns the reconstruction_threshold value or the default.
func (c *AnalysisConfig) GetReconstructionThreshold() float64 {
	if c.ReconstructionThreshold == nil {
		return 0.01
	}
	return *c.ReconstructionThreshold
}

// GetCombinedMinNode returns the combined_min_node value or the default.
func (c *AnalysisConfig) GetCombinedMinNode() int {
	if c.CombinedMinNode == nil {
		return 3
	}
	return *c.CombinedMinNode
}

// GetCombinedMaxNode returns the combined_max_node value or the default.
func (c *AnalysisConfig) GetCombinedMaxNode() int {
	if c.CombinedMaxNode == nil {
		return 12
	}
	return *c.CombinedMaxNode
}

// GetImageWidthInches returns the image_width_in value or the default.
func (c *AnalysisConfig) GetImageWidthInches() float64 {
	if c.ImageWidthInches == nil {
		return 14
	}
	return *c.ImageWidthInches
}

// GetImageHeightInches returns the image_height_in value or the default.
func (c *AnalysisConfig) GetImageHeightInches() float64 {
	if c.ImageHeightInches == nil {
		return 11
	}
	return *c.ImageHeightInches
}

// GetOpenBrowser returns the open_browser value or the default.
func (c *AnalysisConfig) GetOpenBrowser() bool {
	if c.OpenBrowser == nil {
		return false
	}
	return *c.OpenBrowser
}
