// Package config loads row display configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/lepinkainen/rowterm/terminal"
)

// File mirrors the YAML layout of a configuration file
type File struct {
	// IDRegex names each row from the first line it matches
	IDRegex string `yaml:"id_regex"`

	// IDJustify right-justifies identifiers into a fixed column
	IDJustify bool `yaml:"id_justify"`

	// IDWidth overrides the identifier column width
	IDWidth int `yaml:"id_width"`

	// TextRegex restricts which plain lines are displayed
	TextRegex string `yaml:"text_regex"`

	// ProgressBar enables progress bar rendering
	ProgressBar *ProgressBar `yaml:"progress_bar"`
}

// ProgressBar is the progress_bar block of a configuration file
type ProgressBar struct {
	Total      Total  `yaml:"total"`
	CountRegex string `yaml:"count_regex"`
	MaxTotal   int    `yaml:"max_total"`
}

// Total holds either a fixed integer total or a pattern extracting it
type Total struct {
	Value   int
	Pattern string
	set     bool
	pattern bool
}

// UnmarshalYAML accepts an integer or a string pattern
func (t *Total) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: total must be an integer or a pattern", value.Line)
	}

	if value.Tag == "!!int" {
		var n int
		if err := value.Decode(&n); err != nil {
			return fmt.Errorf("line %d: total: %w", value.Line, err)
		}
		*t = Total{Value: n, set: true}
		return nil
	}

	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("line %d: total: %w", value.Line, err)
	}
	*t = Total{Pattern: s, set: true, pattern: true}
	return nil
}

// IsSet reports whether the total was present in the file
func (t Total) IsSet() bool {
	return t.set
}

// String returns the total the way it appeared in the file
func (t Total) String() string {
	if t.pattern {
		return t.Pattern
	}
	return strconv.Itoa(t.Value)
}

// Load reads and parses the configuration file at path
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration data
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &f, nil
}

// Terminal converts the file into the configuration the row display expects.
// Validation is left to terminal.New.
func (f *File) Terminal() *terminal.Config {
	cfg := &terminal.Config{
		IDRegex:   f.IDRegex,
		IDJustify: f.IDJustify,
		IDWidth:   f.IDWidth,
		TextRegex: f.TextRegex,
	}
	if f.ProgressBar != nil {
		pb := &terminal.ProgressBarConfig{
			CountRegex: f.ProgressBar.CountRegex,
			MaxTotal:   f.ProgressBar.MaxTotal,
		}
		switch {
		case !f.ProgressBar.Total.IsSet():
		case f.ProgressBar.Total.pattern:
			pb.Total = f.ProgressBar.Total.Pattern
		default:
			pb.Total = f.ProgressBar.Total.Value
		}
		cfg.ProgressBar = pb
	}
	return cfg
}

// ParseTotal interprets a command line total: an integer is a fixed total,
// anything else is a pattern.
func ParseTotal(s string) Total {
	if n, err := strconv.Atoi(s); err == nil {
		return Total{Value: n, set: true}
	}
	return Total{Pattern: s, set: true, pattern: true}
}
