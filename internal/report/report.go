// Package report renders the result of validating an identity schema's
// consent configuration.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/project-kessel/spice/internal/schema"
)

// Scope summarizes one configured scope
type Scope struct {
	Name             string   `json:"name" yaml:"name"`
	Kind             string   `json:"kind" yaml:"kind"`
	Collect          string   `json:"collect,omitempty" yaml:"collect,omitempty"`
	Traits           []string `json:"traits,omitempty" yaml:"traits,omitempty"`
	IDTokenClaim     string   `json:"id_token_claim,omitempty" yaml:"id_token_claim,omitempty"`
	AccessTokenClaim string   `json:"access_token_claim,omitempty" yaml:"access_token_claim,omitempty"`
}

// Report summarizes the scopes and warnings found in an identity schema
type Report struct {
	Scopes   []Scope  `json:"scopes" yaml:"scopes"`
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// HasWarnings reports whether the schema produced any warnings
func (r *Report) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Build walks the schema and parses its scope configuration into a report
func Build(schemaJSON []byte, keyword string, directMapping bool) (*Report, error) {
	walker := schema.NewWalker(keyword, directMapping)
	pointers, walkWarnings := walker.Walk(schemaJSON)

	parser, err := schema.NewParser(keyword)
	if err != nil {
		return nil, err
	}
	configs, parseWarnings := parser.Parse(schemaJSON, pointers)

	report := &Report{}

	for _, name := range configs.Scopes() {
		cfg, _ := configs.Get(name)

		entry := Scope{
			Name:             name,
			Kind:             cfg.Kind(),
			IDTokenClaim:     cfg.SessionData().IDToken,
			AccessTokenClaim: cfg.SessionData().AccessToken,
		}

		if value, ok := cfg.(*schema.ValueScope); ok {
			entry.Collect = string(value.Collect)
		}

		if ptrs, ok := pointers.Get(name); ok {
			for _, ptr := range ptrs {
				entry.Traits = append(entry.Traits, ptr.String())
			}
		}

		report.Scopes = append(report.Scopes, entry)
	}

	for _, warning := range walkWarnings {
		report.Warnings = append(report.Warnings, warning.String())
	}
	for _, warning := range parseWarnings {
		report.Warnings = append(report.Warnings, warning.String())
	}

	return report, nil
}

// Render writes the report to w in the given format (text, json, or yaml)
func (r *Report) Render(w io.Writer, format string) error {
	switch format {
	case "", "text":
		return r.renderText(w)
	case "json":
		encoded, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report as JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(encoded))
		return err
	case "yaml":
		encoded, err := yaml.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to encode report as YAML: %w", err)
		}
		_, err = w.Write(encoded)
		return err
	default:
		return fmt.Errorf("unsupported report format: %s (supported: text, json, yaml)", format)
	}
}

func (r *Report) renderText(w io.Writer) error {
	if len(r.Scopes) == 0 {
		if _, err := fmt.Fprintln(w, "No scopes configured."); err != nil {
			return err
		}
	}

	for _, scope := range r.Scopes {
		line := fmt.Sprintf("scope %s (%s)", scope.Name, scope.Kind)
		if scope.Collect != "" {
			line += fmt.Sprintf(" collect=%s", scope.Collect)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		if len(scope.Traits) > 0 {
			if _, err := fmt.Fprintf(w, "  traits:       %s\n", strings.Join(scope.Traits, ", ")); err != nil {
				return err
			}
		}
		if scope.IDTokenClaim != "" {
			if _, err := fmt.Fprintf(w, "  id_token:     %s\n", scope.IDTokenClaim); err != nil {
				return err
			}
		}
		if scope.AccessTokenClaim != "" {
			if _, err := fmt.Fprintf(w, "  access_token: %s\n", scope.AccessTokenClaim); err != nil {
				return err
			}
		}
	}

	if len(r.Warnings) > 0 {
		if _, err := fmt.Fprintf(w, "\n%d warning(s):\n", len(r.Warnings)); err != nil {
			return err
		}
		for _, warning := range r.Warnings {
			if _, err := fmt.Fprintf(w, "  - %s\n", warning); err != nil {
				return err
			}
		}
	}

	return nil
}
