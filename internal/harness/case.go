package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/decteify/internal/decte"
)

// Case is one rewrite case loaded from YAML.
type Case struct {
	// Name identifies the case in reports.
	Name string `yaml:"name"`

	// Description explains what the case checks.
	Description string `yaml:"description"`

	// Input is the query to rewrite.
	Input string `yaml:"input"`

	// Options override the default rewrite options.
	Options CaseOptions `yaml:"options,omitempty"`

	// Expect describes the required outcome.
	Expect Expect `yaml:"expect"`
}

// CaseOptions mirror decte.Options. GuardDivisions is a pointer so that an
// absent field keeps the default of true.
type CaseOptions struct {
	FailOnCycle     bool  `yaml:"fail_on_cycle,omitempty"`
	FailOnMalformed bool  `yaml:"fail_on_malformed,omitempty"`
	GuardDivisions  *bool `yaml:"guard_divisions,omitempty"`
}

// Expect lists the checks applied to a rewrite.
type Expect struct {
	SQL         string   `yaml:"sql,omitempty"`
	Contains    []string `yaml:"contains,omitempty"`
	NotContains []string `yaml:"not_contains,omitempty"`
	Order       []string `yaml:"order,omitempty"`
	Warnings    []string `yaml:"warnings,omitempty"`
	Error       string   `yaml:"error,omitempty"`
}

// RewriteOptions converts the case options into pipeline options.
func (o CaseOptions) RewriteOptions() decte.Options {
	opts := decte.DefaultOptions()
	opts.FailOnCycle = o.FailOnCycle
	opts.FailOnMalformed = o.FailOnMalformed
	if o.GuardDivisions != nil {
		opts.GuardDivisions = *o.GuardDivisions
	}
	return opts
}

// LoadCase reads and parses a case YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadCase(path string) (*Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read case file: %w", err)
	}

	var c Case
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateCase(&c); err != nil {
		return nil, fmt.Errorf("invalid case: %w", err)
	}

	return &c, nil
}

// validateCase checks that required fields are present and valid.
func validateCase(c *Case) error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.Description == "" {
		return fmt.Errorf("description is required")
	}
	if c.Input == "" {
		return fmt.Errorf("input is required")
	}
	if c.Expect.Error != "" && !c.Options.FailOnCycle && !c.Options.FailOnMalformed {
		return fmt.Errorf("expect.error %s can only occur with fail_on_cycle or fail_on_malformed", c.Expect.Error)
	}
	return nil
}
