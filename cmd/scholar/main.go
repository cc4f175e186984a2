// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the scholar CLI: keyword search,
// citation/reference listing, and bounded citation graph building over
// the Semantic Scholar Graph API.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Ayden-Zhou/Scholar-Tool/internal/cache"
	"github.com/Ayden-Zhou/Scholar-Tool/internal/s2"
	"github.com/Ayden-Zhou/Scholar-Tool/internal/secrets"
	"github.com/Ayden-Zhou/Scholar-Tool/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the scholar CLI.
var rootCmd = &cobra.Command{
	Use:   "scholar",
	Short: "Explore citation networks via the Semantic Scholar API",
	Long: `scholar searches academic APIs for papers, lists what a paper cites or is
cited by, and builds bounded-depth citation graphs around a seed paper.

Graphs export to JSON or YAML and render to an interactive HTML page.
Relation listings are cached locally so repeated runs do not re-crawl.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./scholar.yaml or ~/.config/scholar/config.yaml)")
	rootCmd.PersistentFlags().String("api-key", "", "Semantic Scholar API key (default: .secrets/semantic-scholar-api-key)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("scholar")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "scholar"))
		}
	}

	viper.SetEnvPrefix("SCHOLAR")
	viper.AutomaticEnv()

	viper.SetDefault("http.timeout", "60s")
	viper.SetDefault("http.user_agent", "scholar/"+version)
	viper.SetDefault("cache.dir", "cache")
	viper.SetDefault("search.enable_arxiv", true)
	viper.SetDefault("search.enable_semantic_scholar", true)
	viper.SetDefault("search.enable_openalex", true)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// httpConfig assembles shared HTTP settings from config.
func httpConfig() types.HTTPConfig {
	return types.HTTPConfig{
		Timeout:   viper.GetDuration("http.timeout"),
		UserAgent: viper.GetString("http.user_agent"),
	}
}

// newAPIClient builds the Semantic Scholar client used by the relation
// and graph commands.
func newAPIClient(cmd *cobra.Command) *s2.Client {
	apiKey, _ := cmd.Flags().GetString("api-key")
	return s2.NewClient(httpConfig(), secretDefault(secrets.SemanticScholarAPIKey, apiKey))
}

// resolveSeed turns the --title/--id flags into a resolved paper,
// consulting the resolution cache when it is enabled. Seed resolution
// failure is fatal for every command that needs a seed.
func resolveSeed(cmd *cobra.Command) (types.PaperNode, error) {
	title, _ := cmd.Flags().GetString("title")
	id, _ := cmd.Flags().GetString("id")

	switch {
	case title == "" && id == "":
		return types.PaperNode{}, fmt.Errorf("either --title or --id is required")
	case title != "" && id != "":
		return types.PaperNode{}, fmt.Errorf("--title and --id are mutually exclusive")
	}

	query := title
	if id != "" {
		query = id
	}

	var store *cache.Store
	noCache, _ := cmd.Flags().GetBool("no-cache")
	if !noCache && !viper.GetBool("cache.disabled") {
		s, err := cache.NewStore(types.CacheConfig{Dir: viper.GetString("cache.dir")})
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: cache unavailable: %v\n", err)
		} else {
			store = s
			defer store.Close()
			if node, ok, err := store.GetResolved(cmd.Context(), query); err == nil && ok {
				return node, nil
			}
		}
	}

	client := newAPIClient(cmd)
	node, err := client.Resolve(cmd.Context(), query)
	if err != nil {
		return types.PaperNode{}, fmt.Errorf("resolving %q: %w", query, err)
	}
	fmt.Fprintf(os.Stderr, "Resolved %q -> %s (%s, %d citations)\n",
		query, node.PaperID, node.Title, node.CitationCount)

	if store != nil {
		if err := store.PutResolved(cmd.Context(), query, *node); err != nil {
			fmt.Fprintf(os.Stderr, "warning: caching resolution: %v\n", err)
		}
	}
	return *node, nil
}

// relationFilterFromFlags reads the shared filter flags.
func relationFilterFromFlags(cmd *cobra.Command) types.RelationFilter {
	influentialOnly, _ := cmd.Flags().GetBool("influential-only")
	sinceYear, _ := cmd.Flags().GetInt("since-year")
	untilYear, _ := cmd.Flags().GetInt("until-year")
	fetchLimit, _ := cmd.Flags().GetInt("fetch-limit")
	return types.RelationFilter{
		InfluentialOnly: influentialOnly,
		SinceYear:       sinceYear,
		UntilYear:       untilYear,
		FetchLimit:      fetchLimit,
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
