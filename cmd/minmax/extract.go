// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/minmax/internal/minmax"
	"github.com/pdiddy/minmax/internal/relstore"
	"github.com/pdiddy/minmax/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Extract range relations from annotated documents",
	Long: `Extract reads each document, finds its range relations and prints
them as YAML (or JSON with --json). Each result is also written to
[output-dir]/[doc-id]-relations.yaml; --store indexes the results into
the relation store as well.

A document that fails is reported and the remaining documents still run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")
	toStore, _ := cmd.Flags().GetBool("store")
	noWrite, _ := cmd.Flags().GetBool("no-write")

	ex, err := minmax.New(cfg.Extraction, minmax.WithLogger(log))
	if err != nil {
		return err
	}

	var store *relstore.Store
	if toStore {
		store, err = relstore.NewStore(storeConfig(cmd, cfg.Store))
		if err != nil {
			return err
		}
		defer store.Close()
	}

	ctx := context.Background()
	failed := 0
	results := make([]types.ExtractionResult, 0, len(args))
	for _, path := range args {
		result := extractFile(ctx, ex, path)
		if result.Error != "" {
			log.Warn("extraction failed", zap.String("file", path), zap.String("error", result.Error))
			failed++
		}
		results = append(results, result)

		if !noWrite && result.DocumentID != "" {
			out, err := relstore.WriteResult(cfg.Extraction.OutputDir, result)
			if err != nil {
				return err
			}
			log.Debug("wrote result", zap.String("path", out))
		}
		if store != nil && result.DocumentID != "" {
			if err := store.Save(ctx, result); err != nil {
				return err
			}
		}
	}

	if err := printResults(os.Stdout, results, jsonOutput); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d document(s) failed extraction", failed)
	}
	return nil
}

// extractFile runs one document. Failures are recorded in the result.
func extractFile(ctx context.Context, ex *minmax.Extractor, path string) types.ExtractionResult {
	doc, err := readDocument(path)
	if err != nil {
		return types.ExtractionResult{Error: err.Error()}
	}
	rels, err := ex.Extract(ctx, doc)
	if err != nil {
		return types.ExtractionResult{DocumentID: doc.ID, Error: err.Error()}
	}
	return types.ExtractionResult{DocumentID: doc.ID, Relations: rels}
}

func printResults(w io.Writer, results []types.ExtractionResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(results)
}

func init() {
	extractCmd.Flags().Bool("json", false, "print results as JSON")
	extractCmd.Flags().Bool("store", false, "index results into the relation store")
	extractCmd.Flags().Bool("no-write", false, "do not write result files")
	extractCmd.Flags().String("backend", types.DefaultGazetteerBackend, "gazetteer backend: regex or automaton")
	extractCmd.Flags().Bool("sentences", false, "extract one sentence at a time")
	extractCmd.Flags().Bool("stopwords", false, "mark stopword tokens in the view")
	extractCmd.Flags().String("relation-type", types.DefaultRelationType, "type given to extracted relations")
	extractCmd.Flags().String("output-dir", types.DefaultOutputDir, "directory for [doc-id]-relations.yaml files")
	extractCmd.Flags().String("store-dir", types.DefaultStoreDir, "relation store directory (with --store)")

	_ = viper.BindPFlag("extraction.gazetteer_backend", extractCmd.Flags().Lookup("backend"))
	_ = viper.BindPFlag("extraction.sentence_scoped", extractCmd.Flags().Lookup("sentences"))
	_ = viper.BindPFlag("extraction.mark_stopwords", extractCmd.Flags().Lookup("stopwords"))
	_ = viper.BindPFlag("extraction.relation_type", extractCmd.Flags().Lookup("relation-type"))
	_ = viper.BindPFlag("extraction.output_dir", extractCmd.Flags().Lookup("output-dir"))

	rootCmd.AddCommand(extractCmd)
}
