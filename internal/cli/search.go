package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	searchKind string
	searchFile string
	searchMax  int
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <repo> <query>",
	Short: "Search symbols in an indexed repository",
	Long: `Search ranks a repo's symbols against a query, matching names,
signatures, summaries, and docstrings.

Examples:
  codemunch search myproject "session login"
  codemunch search myproject renew --kind method
  codemunch search myproject auth --file 'src/**'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, _, err := newService()
		if err != nil {
			return err
		}
		defer service.Close()

		result, err := service.SearchSymbols(context.Background(), args[0], args[1], searchKind, searchFile, searchMax)
		if err != nil {
			return err
		}

		if result.ResultCount == 0 {
			fmt.Printf("No symbols match %q in %s\n", result.Query, result.Repo)
			return nil
		}

		for _, hit := range result.Results {
			fmt.Printf("%6.2f  %-8s %s:%d\n", hit.Score, hit.Kind, hit.File, hit.Line)
			fmt.Printf("        %s  [%s]\n", hit.Signature, hit.ID)
			if hit.Summary != "" && hit.Summary != hit.Signature {
				fmt.Printf("        %s\n", hit.Summary)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchKind, "kind", "k", "", "Filter by symbol kind (function, class, method, constant, type)")
	searchCmd.Flags().StringVarP(&searchFile, "file", "f", "", "Filter by file glob pattern")
	searchCmd.Flags().IntVarP(&searchMax, "max", "m", 10, "Maximum number of results")
}
