// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/minmax/internal/relstore"
	"github.com/pdiddy/minmax/pkg/types"
)

var relationsCmd = &cobra.Command{
	Use:   "relations",
	Short: "Manage the relation store (store, list, export)",
	Long: `Relations manages a local SQLite store built from extraction result
files. Use subcommands to index results, list relations, or export them.`,
}

// --- store subcommand ---

var relationsStoreCmd = &cobra.Command{
	Use:   "store [results-dir]",
	Short: "Ingest result files into the relation store",
	Long: `Store reads [doc-id]-relations.yaml files from the results directory
(default: the configured output directory), ingests them into SQLite and
writes export.yaml. Unchanged files are skipped on subsequent runs.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRelationsStore,
}

func runRelationsStore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dir := cfg.Extraction.OutputDir
	if len(args) > 0 {
		dir = args[0]
	}

	store, err := relstore.NewStore(storeConfig(cmd, cfg.Store))
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), dir, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d result file(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- list subcommand ---

var relationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored relations with filters",
	RunE:  runRelationsList,
}

func runRelationsList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := relstore.NewStore(storeConfig(cmd, cfg.Store))
	if err != nil {
		return err
	}
	defer store.Close()

	rels, err := store.List(context.Background(), queryOptsFromFlags(cmd))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatListOutput(rels, jsonOutput)
}

func formatListOutput(rels []types.Relation, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rels)
	}

	if len(rels) == 0 {
		fmt.Println("No relations found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-12s  %-8s  %-8s  %-12s  %s\n",
		"Document", "Span", "Min", "Max", "Unit", "Text")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for _, r := range rels {
		doc := r.DocumentID
		if len(doc) > 20 {
			doc = doc[:17] + "..."
		}
		text := r.NormalizedText
		if len(text) > 40 {
			text = text[:37] + "..."
		}
		span := fmt.Sprintf("%d-%d", r.Start, r.End)
		fmt.Fprintf(os.Stdout, "%-20s  %-12s  %-8s  %-8s  %-12s  %s\n",
			doc, span, r.Properties[types.PropMin], r.Properties[types.PropMax],
			r.Properties[types.PropUnitOfMeasure], text)
	}

	fmt.Fprintf(os.Stdout, "\n%d relations\n", len(rels))
	return nil
}

// --- export subcommand ---

var relationsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored relations to YAML or JSON",
	Long: `Export writes the stored relations (or a filtered subset) to
export.yaml or export.json in the store directory.`,
	RunE: runRelationsExport,
}

func runRelationsExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := relstore.NewStore(storeConfig(cmd, cfg.Store))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd)

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(context.Background(), opts)
	case "json":
		path, err = store.ExportJSON(context.Background(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Println("Exported to", path)
	return nil
}

// --- shared helpers ---

// storeConfig applies a --store-dir flag given on cmd over the configured
// store settings.
func storeConfig(cmd *cobra.Command, cfg types.StoreConfig) types.StoreConfig {
	if f := cmd.Flags().Lookup("store-dir"); f != nil && f.Changed {
		cfg.StoreDir = f.Value.String()
	}
	return cfg
}

func queryOptsFromFlags(cmd *cobra.Command) relstore.QueryOptions {
	docID, _ := cmd.Flags().GetString("document")
	relType, _ := cmd.Flags().GetString("type")
	unit, _ := cmd.Flags().GetString("unit")
	contains, _ := cmd.Flags().GetString("contains")
	limit, _ := cmd.Flags().GetInt("limit")

	return relstore.QueryOptions{
		DocumentID: docID,
		Type:       relType,
		Unit:       unit,
		Contains:   contains,
		MaxResults: limit,
	}
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("document", "", "filter by document ID")
	cmd.Flags().String("type", "", "filter by relation type")
	cmd.Flags().String("unit", "", "filter by unit of measure")
	cmd.Flags().String("contains", "", "filter by text substring")
	cmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
}

func init() {
	relationsCmd.PersistentFlags().String("store-dir", types.DefaultStoreDir, "relation store directory")

	addFilterFlags(relationsListCmd)
	relationsListCmd.Flags().Bool("json", false, "output relations as JSON")

	addFilterFlags(relationsExportCmd)
	relationsExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	relationsCmd.AddCommand(relationsStoreCmd)
	relationsCmd.AddCommand(relationsListCmd)
	relationsCmd.AddCommand(relationsExportCmd)

	rootCmd.AddCommand(relationsCmd)
}
