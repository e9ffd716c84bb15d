// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package relstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/minmax/pkg/types"
)

// QueryOptions filters listed relations. Empty fields do not filter.
type QueryOptions struct {
	DocumentID string
	Type       string

	// Unit filters by unit_of_measure.
	Unit string

	// Contains filters by a case-insensitive substring of the relation text.
	Contains string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// List returns matching relations ordered by document and start offset.
func (s *Store) List(ctx context.Context, opts QueryOptions) ([]types.Relation, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT id, type, document_id, start_offset, end_offset, text, normalized_text, properties
		FROM relations
		WHERE 1=1`)

	if opts.DocumentID != "" {
		qb.WriteString(` AND document_id = ?`)
		args = append(args, opts.DocumentID)
	}
	if opts.Type != "" {
		qb.WriteString(` AND type = ?`)
		args = append(args, opts.Type)
	}
	if opts.Unit != "" {
		qb.WriteString(` AND unit = ?`)
		args = append(args, opts.Unit)
	}
	if opts.Contains != "" {
		qb.WriteString(` AND lower(text) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(opts.Contains))+"%")
	}
	qb.WriteString(` ORDER BY document_id, start_offset LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying relations: %w", err)
	}
	defer rows.Close()

	var out []types.Relation
	for rows.Next() {
		var (
			r          types.Relation
			normalized sql.NullString
			propsJSON  sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Type, &r.DocumentID, &r.Start, &r.End, &r.Text, &normalized, &propsJSON); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		r.NormalizedText = normalized.String
		if propsJSON.Valid {
			if err := json.Unmarshal([]byte(propsJSON.String), &r.Properties); err != nil {
				return nil, fmt.Errorf("decoding properties of %s: %w", r.ID, err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Documents returns the stored document IDs with their relation counts.
func (s *Store) Documents(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, relation_count FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			id    string
			count int
		)
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out[id] = count
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
