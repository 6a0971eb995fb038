// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pubmed-engine CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-engine/internal/logging"
	"github.com/pdiddy/pubmed-engine/internal/secrets"
	"github.com/pdiddy/pubmed-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the effective configuration, resolved before each command runs.
	cfg types.Config

	// logger carries diagnostics; user-facing progress goes to stderr directly.
	logger = zerolog.Nop()
)

// rootCmd is the base command for the pubmed-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "pubmed-engine",
	Short: "Extract structured citation records from PubMed",
	Long: `pubmed-engine turns PubMed citation XML into structured article records.

Records can come from local efetch XML files (parse), from the NCBI
E-utilities API (fetch, search), or from the local article store (store).
Output is JSON, YAML or CSL-YAML.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		secretsDir := viper.GetString("secrets_dir")
		s, err := secrets.Load(secretsDir)
		if err != nil {
			return err
		}

		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("reading configuration: %w", err)
		}
		secrets.Apply(&cfg.EUtils, s)

		l, err := logging.New(cfg.Logging)
		if err != nil {
			return err
		}
		logger = l

		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug().Strs("keys", keys).Str("dir", secretsDir).Msg("loaded secrets")
		}
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug().Str("path", used).Msg("using config file")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./pubmed-engine.yaml or ~/.config/pubmed-engine/config.yaml)")
	pf.String("log-level", "info", "log level: trace, debug, info, warn, error")
	pf.String("log-format", "console", "log format: console or json")
	pf.String("data-dir", "data", "directory holding the article store")
	pf.String("api-key", "", "NCBI API key (default: .secrets/ncbi-api-key)")
	pf.String("email", "", "contact email sent to NCBI (default: .secrets/ncbi-email)")

	bindFlag("logging.level", pf.Lookup("log-level"))
	bindFlag("logging.format", pf.Lookup("log-format"))
	bindFlag("store.data_dir", pf.Lookup("data-dir"))
	bindFlag("eutils.api_key", pf.Lookup("api-key"))
	bindFlag("eutils.email", pf.Lookup("email"))

	setDefaults(viper.GetViper())
}

// setDefaults registers every configuration key so that environment
// variables are honoured by Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("secrets_dir", ".secrets/")
	v.SetDefault("eutils.base_url", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils")
	v.SetDefault("eutils.tool", "pubmed-engine")
	v.SetDefault("eutils.timeout", "30s")
	v.SetDefault("eutils.user_agent", "pubmed-engine/"+version)
	v.SetDefault("eutils.rate_limit", 0)
	v.SetDefault("eutils.batch_size", 200)
	v.SetDefault("eutils.max_retries", 5)
	v.SetDefault("eutils.workers", 4)
	v.SetDefault("store.max_results", 20)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pubmed-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pubmed-engine"))
		}
	}

	viper.SetEnvPrefix("PUBMED_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "warning: reading config:", err)
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
