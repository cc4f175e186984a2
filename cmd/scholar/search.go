// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Ayden-Zhou/Scholar-Tool/internal/search"
	"github.com/Ayden-Zhou/Scholar-Tool/internal/secrets"
	"github.com/Ayden-Zhou/Scholar-Tool/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search <keywords>...",
	Short: "Search academic APIs for papers by keyword",
	Long: `Search queries arXiv, Semantic Scholar, and OpenAlex for papers matching
the given keywords. Results are deduplicated across sources and ranked by
citation count or citations per year.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("num-results", 10, "maximum number of ranked results")
	searchCmd.Flags().Int("fetch-limit", 100, "candidates requested from each backend before ranking")
	searchCmd.Flags().String("sort-by", "citations", "ranking: citations or cit_year")
	searchCmd.Flags().Int("since-year", 0, "drop papers published before this year")
	searchCmd.Flags().Int("until-year", 0, "drop papers published after this year")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().String("save-csv", "", "also write results to a CSV file")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	numResults, _ := cmd.Flags().GetInt("num-results")
	fetchLimit, _ := cmd.Flags().GetInt("fetch-limit")
	sortBy, _ := cmd.Flags().GetString("sort-by")
	sinceYear, _ := cmd.Flags().GetInt("since-year")
	untilYear, _ := cmd.Flags().GetInt("until-year")
	apiKey, _ := cmd.Flags().GetString("api-key")

	cfg := types.SearchConfig{
		HTTPConfig:            httpConfig(),
		MaxResults:            numResults,
		FetchLimit:            fetchLimit,
		EnableArxiv:           viper.GetBool("search.enable_arxiv"),
		EnableSemanticScholar: viper.GetBool("search.enable_semantic_scholar"),
		EnableOpenAlex:        viper.GetBool("search.enable_openalex"),
		SemanticScholarAPIKey: secretDefault(secrets.SemanticScholarAPIKey, apiKey),
		OpenAlexEmail:         secretDefault(secrets.OpenAlexEmail, viper.GetString("search.openalex_email")),
		SinceYear:             sinceYear,
		UntilYear:             untilYear,
	}

	client := &http.Client{Timeout: cfg.Timeout}
	var backends []search.Backend
	if cfg.EnableArxiv {
		backends = append(backends, &search.ArxivBackend{Client: client})
	}
	if cfg.EnableSemanticScholar {
		backends = append(backends, &search.SemanticScholarBackend{Client: client, APIKey: cfg.SemanticScholarAPIKey})
	}
	if cfg.EnableOpenAlex {
		backends = append(backends, &search.OpenAlexBackend{Client: client, Email: cfg.OpenAlexEmail})
	}

	query := strings.Join(args, " ")
	out, err := search.Run(cmd.Context(), query, backends, cfg, search.SortBy(sortBy), os.Stderr)
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("save-csv"); path != "" {
		if err := search.SaveCSV(out.Results, path); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved %d results to %s\n", len(out.Results), path)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return search.FormatJSON(out, os.Stdout)
	}
	search.FormatTable(out, os.Stdout)
	return nil
}
