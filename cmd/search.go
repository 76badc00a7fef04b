package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/flinsight/internal/progress"
	"github.com/ziadkadry99/flinsight/internal/regulation"
	"github.com/ziadkadry99/flinsight/internal/retrieval"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Semantically search the Part 135 regulations",
	Long:  `Loads the regulations, builds the index and prints the sections closest to the query.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().Int("limit", retrieval.DefaultK, "maximum number of sections")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	policy := outboundPolicy(cfg)

	documents := regulation.NewStore(nil)
	snap := documents.Load(ctx, regulation.NewECFRSource(cfg.Sources.RegulationsURL, policy))
	if snap.Len() == 0 {
		fmt.Println("No regulations could be loaded.")
		return nil
	}

	reporter := progress.NewReporter("Indexing regulations", os.Stderr)
	retriever := newRetriever(cfg, policy)
	if err := retriever.Rebuild(ctx, snap, progress.Func(reporter)); err != nil {
		return fmt.Errorf("building index: %w", err)
	}
	reporter.Finish()

	res := retriever.Search(ctx, args[0], limit)
	if !res.Available {
		return fmt.Errorf("semantic search is unavailable")
	}
	if len(res.Records) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	if jsonOutput {
		return printSearchResultsJSON(res)
	}
	printSearchResultsTable(res)
	return nil
}

type searchResultJSON struct {
	Rank     int     `json:"rank"`
	Distance float32 `json:"distance"`
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
	Summary  string  `json:"summary"`
}

func printSearchResultsJSON(res retrieval.Retrieval) error {
	out := make([]searchResultJSON, 0, len(res.Records))
	for i, r := range res.Records {
		out = append(out, searchResultJSON{
			Rank:     i + 1,
			Distance: res.Distances[i],
			ID:       r.ID,
			Title:    r.Title,
			Category: r.Category,
			Date:     r.Date,
			Summary:  truncate(r.Content, 200),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printSearchResultsTable(res retrieval.Retrieval) {
	fmt.Printf("Found %d sections:\n\n", len(res.Records))
	for i, r := range res.Records {
		fmt.Printf("  %d. [%.4f] %s %s\n", i+1, res.Distances[i], r.ID, r.Title)
		fmt.Printf("     %s\n\n", truncate(r.Content, 120))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
