// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Default configuration values.
const (
	DefaultGazetteerBackend = "regex"
	DefaultRelationType     = "MinMax"
	DefaultOutputDir        = "relations"
	DefaultStoreDir         = "store"
	DefaultMaxResults       = 50
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "console"
)

// ExtractionConfig holds settings for range-relation extraction.
type ExtractionConfig struct {
	// GazetteerBackend selects how marker phrases are found: "regex" or
	// "automaton".
	GazetteerBackend string `json:"gazetteer_backend" yaml:"gazetteer_backend" mapstructure:"gazetteer_backend"`

	// SentenceScoped runs extraction one sentence at a time so a relation
	// never spans a sentence boundary.
	SentenceScoped bool `json:"sentence_scoped" yaml:"sentence_scoped" mapstructure:"sentence_scoped"`

	// MarkStopwords adds stop='true' to stopword tokens in the view.
	MarkStopwords bool `json:"mark_stopwords" yaml:"mark_stopwords" mapstructure:"mark_stopwords"`

	// RelationType is the type given to extracted relations (default "MinMax").
	RelationType string `json:"relation_type" yaml:"relation_type" mapstructure:"relation_type"`

	// OutputDir receives one [doc-id]-relations.yaml file per document.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`
}

// StoreConfig holds settings for the relation store.
type StoreConfig struct {
	// StoreDir contains the SQLite database and exports.
	StoreDir string `json:"store_dir" yaml:"store_dir" mapstructure:"store_dir"`

	// MaxResults is the default maximum number of listed relations.
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is console or json.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all settings.
type Config struct {
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction" mapstructure:"extraction"`
	Store      StoreConfig      `json:"store" yaml:"store" mapstructure:"store"`
	Log        LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
}

// ApplyDefaults fills unset fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Extraction.GazetteerBackend == "" {
		c.Extraction.GazetteerBackend = DefaultGazetteerBackend
	}
	if c.Extraction.RelationType == "" {
		c.Extraction.RelationType = DefaultRelationType
	}
	if c.Extraction.OutputDir == "" {
		c.Extraction.OutputDir = DefaultOutputDir
	}
	if c.Store.StoreDir == "" {
		c.Store.StoreDir = DefaultStoreDir
	}
	if c.Store.MaxResults <= 0 {
		c.Store.MaxResults = DefaultMaxResults
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}
