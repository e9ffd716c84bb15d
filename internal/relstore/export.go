// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package relstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/minmax/pkg/types"
)

// ExportEntry is one relation as written by the exports.
type ExportEntry struct {
	ID         string            `json:"id" yaml:"id"`
	Type       string            `json:"type" yaml:"type"`
	DocumentID string            `json:"document_id" yaml:"document_id"`
	Start      int               `json:"start" yaml:"start"`
	End        int               `json:"end" yaml:"end"`
	Text       string            `json:"text" yaml:"text"`
	Min        string            `json:"min,omitempty" yaml:"min,omitempty"`
	Max        string            `json:"max,omitempty" yaml:"max,omitempty"`
	Unit       string            `json:"unit_of_measure,omitempty" yaml:"unit_of_measure,omitempty"`
	Extra      map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

const exportLimit = 100000

// ExportYAML writes the matching relations to export.yaml in the store
// directory and returns its path.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) (string, error) {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	path := filepath.Join(s.dir, "export.yaml")
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the matching relations to export.json in the store
// directory and returns its path.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) (string, error) {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	path := filepath.Join(s.dir, "export.json")
	return path, os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]ExportEntry, error) {
	opts.MaxResults = exportLimit
	rels, err := s.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(rels))
	for i, r := range rels {
		entries[i] = ExportEntry{
			ID:         r.ID,
			Type:       r.Type,
			DocumentID: r.DocumentID,
			Start:      r.Start,
			End:        r.End,
			Text:       r.NormalizedText,
		}
		for k, v := range r.Properties {
			switch k {
			case types.PropMin:
				entries[i].Min = v
			case types.PropMax:
				entries[i].Max = v
			case types.PropUnitOfMeasure:
				entries[i].Unit = v
			default:
				if entries[i].Extra == nil {
					entries[i].Extra = make(map[string]string)
				}
				entries[i].Extra[k] = v
			}
		}
	}
	return entries, nil
}
