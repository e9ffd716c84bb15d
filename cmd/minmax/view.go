// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/minmax/internal/minmax"
)

var viewCmd = &cobra.Command{
	Use:   "view [file]",
	Short: "Print the annotation view of a document",
	Long: `View prints the record string the first extraction phase matches
over: every entity, marker and token of the document as
<'TYPE'(normalizedContents='...', start='S', end='E')> records.

Use it to see why a phrase did or did not produce a relation.`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func runView(cmd *cobra.Command, args []string) error {
	lines, _ := cmd.Flags().GetBool("lines")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	doc, err := readDocument(args[0])
	if err != nil {
		return err
	}
	ex, err := minmax.New(cfg.Extraction, minmax.WithLogger(log))
	if err != nil {
		return err
	}
	v, err := ex.View(doc)
	if err != nil {
		return err
	}
	if lines {
		v = strings.ReplaceAll(v, "><", ">\n<")
	}
	fmt.Println(v)
	return nil
}

func init() {
	viewCmd.Flags().Bool("lines", false, "print one record per line")

	rootCmd.AddCommand(viewCmd)
}
