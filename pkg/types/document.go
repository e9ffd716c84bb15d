// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Entity types consumed by extraction.
const (
	EntityNumber        = "Number"
	EntityUnitOfMeasure = "Unit_of_Measure"
)

// Relation property keys.
const (
	PropMin           = "min"
	PropMax           = "max"
	PropUnitOfMeasure = "unit_of_measure"
)

// Entity is a typed span recognized upstream, such as a number or a unit
// of measure. Offsets are character (rune) offsets into Document.Text.
type Entity struct {
	// Type names the entity kind, e.g. "Number" or "Unit_of_Measure".
	Type string `json:"type" yaml:"type"`

	// Text is the normalized entity text. When empty the document text at
	// [Start, End) is used.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Document is the unit of extraction: raw text plus its entities.
type Document struct {
	// ID identifies the document. Relation IDs derive from it.
	ID string `json:"id" yaml:"id"`

	Text string `json:"text" yaml:"text"`

	Entities []Entity `json:"entities" yaml:"entities"`
}

// Relation is an extracted range such as "between 170 and 220 pounds".
type Relation struct {
	// ID is stable across re-extractions of the same document.
	ID string `json:"id" yaml:"id"`

	// Type is the relation type, "MinMax" unless configured otherwise.
	Type string `json:"type" yaml:"type"`

	DocumentID string `json:"document_id" yaml:"document_id"`

	// Start and End are character offsets into the document text.
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`

	// Text is the raw document text of the relation.
	Text string `json:"text" yaml:"text"`

	// NormalizedText is Text with whitespace runs collapsed.
	NormalizedText string `json:"normalized_text" yaml:"normalized_text"`

	// Properties hold min, max and unit_of_measure.
	Properties map[string]string `json:"properties" yaml:"properties"`
}

// ExtractionResult holds the relations extracted from one document.
type ExtractionResult struct {
	DocumentID string     `json:"document_id" yaml:"document_id"`
	Relations  []Relation `json:"relations" yaml:"relations"`

	// Error records an extraction failure message. Empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}
