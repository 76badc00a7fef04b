package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/flinsight/internal/progress"
	"github.com/ziadkadry99/flinsight/internal/regulation"
)

var regulationsCmd = &cobra.Command{
	Use:   "regulations",
	Short: "Scrape and print the Part 135 regulation sections",
	Long:  `Fetches the eCFR Part 135 page and prints every parsed section. With --index the sections are also embedded to check the embedding backend.`,
	Args:  cobra.NoArgs,
	RunE:  runRegulations,
}

func init() {
	regulationsCmd.Flags().Bool("json", false, "output records as JSON")
	regulationsCmd.Flags().Bool("index", false, "also build the semantic index")
	rootCmd.AddCommand(regulationsCmd)
}

func runRegulations(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	jsonOutput, _ := cmd.Flags().GetBool("json")
	buildIndex, _ := cmd.Flags().GetBool("index")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	policy := outboundPolicy(cfg)

	records, err := regulation.NewECFRSource(cfg.Sources.RegulationsURL, policy).Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetching regulations: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return err
		}
	} else {
		fmt.Printf("Parsed %d sections:\n\n", len(records))
		for _, r := range records {
			fmt.Printf("  %-10s %-12s %s\n", r.ID, r.Date, r.Title)
		}
	}

	if !buildIndex {
		return nil
	}

	documents := regulation.NewStore(nil)
	snap := documents.Load(ctx, regulation.StaticSource(records))

	reporter := progress.NewReporter("Indexing regulations", os.Stderr)
	retriever := newRetriever(cfg, policy)
	if err := retriever.Rebuild(ctx, snap, progress.Func(reporter)); err != nil {
		return fmt.Errorf("building index: %w", err)
	}
	reporter.Finish()

	fmt.Fprintf(os.Stderr, "Indexed %d sections (generation %d)\n", len(retriever.Records()), retriever.Generation())
	return nil
}
