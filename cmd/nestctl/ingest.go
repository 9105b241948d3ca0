package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(ingestCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <url>...",
	Short: "Extract products from retailer pages and add them to the catalog",
	Long: `Fetch each product page, extract structured product data with the
configured LLM and save it. A page that was ingested before updates the
existing product.

Examples:
  nestctl ingest https://shop.example.com/products/swaddle
  nestctl ingest https://a.example.com/p/1 https://b.example.com/p/2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	application, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer application.Close()

	results, err := application.Services.Ingestion.IngestBatch(cmd.Context(), args)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "URL\tSTATUS\tPRODUCT")
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "%s\tfailed\t%s\n", r.URL, r.Error)
			continue
		}
		fmt.Fprintf(w, "%s\tok\t%s (%s)\n", r.URL, r.Product.Name, r.Product.ID)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d urls failed", failed, len(results))
	}
	return nil
}
