// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package relstore

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/minmax/pkg/types"
)

// ResultPath returns where the result file of docID lives in dir.
func ResultPath(dir, docID string) string {
	return filepath.Join(dir, docID+resultSuffix)
}

// WriteResult writes result to dir as [doc-id]-relations.yaml and returns
// the path.
func WriteResult(dir string, result types.ExtractionResult) (string, error) {
	if result.DocumentID == "" {
		return "", fmt.Errorf("writing result: empty document id")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	data, err := yaml.Marshal(&result)
	if err != nil {
		return "", fmt.Errorf("marshaling result: %w", err)
	}
	path := ResultPath(dir, result.DocumentID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// ReadResult reads one result file.
func ReadResult(path string) (types.ExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ExtractionResult{}, err
	}
	var result types.ExtractionResult
	if err := yaml.Unmarshal(data, &result); err != nil {
		return types.ExtractionResult{}, fmt.Errorf("parse error: %w", err)
	}
	return result, nil
}
