// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the minmax CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/minmax/internal/logging"
	"github.com/pdiddy/minmax/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// log is built from the loaded configuration before any subcommand runs.
var log = zap.NewNop()

// rootCmd is the base command for the minmax CLI.
var rootCmd = &cobra.Command{
	Use:   "minmax",
	Short: "Extract numeric range relations from annotated text",
	Long: `minmax finds numeric ranges such as "between 170 and 220 pounds" or
"a minimum of 15 minutes and a maximum of 20 minutes" in documents whose
numbers and units of measure are already annotated.

Documents are YAML or JSON files with an id, the text, and its entities.
Results are printed and written to one [doc-id]-relations.yaml file per
document, which the relations subcommands index into a SQLite store.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		l, err := logging.New(cfg.Log)
		if err != nil {
			return err
		}
		log = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./minmax.yaml or ~/.config/minmax/minmax.yaml)")
	rootCmd.PersistentFlags().String("log-level", types.DefaultLogLevel, "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", types.DefaultLogFormat, "log format: console or json")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	viper.SetDefault("extraction.gazetteer_backend", types.DefaultGazetteerBackend)
	viper.SetDefault("extraction.sentence_scoped", false)
	viper.SetDefault("extraction.mark_stopwords", false)
	viper.SetDefault("extraction.relation_type", types.DefaultRelationType)
	viper.SetDefault("extraction.output_dir", types.DefaultOutputDir)
	viper.SetDefault("store.store_dir", types.DefaultStoreDir)
	viper.SetDefault("store.max_results", types.DefaultMaxResults)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("minmax")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "minmax"))
		}
	}

	viper.SetEnvPrefix("MINMAX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig merges defaults, the config file, environment and flags.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("reading configuration: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
