package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// reposCmd represents the repos command
var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List indexed repositories",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, _, err := newService()
		if err != nil {
			return err
		}
		defer service.Close()

		result, err := service.ListRepos(context.Background())
		if err != nil {
			return err
		}

		if result.Count == 0 {
			fmt.Println("No repositories indexed. Run 'codemunch index <folder>' first.")
			return nil
		}

		for _, repo := range result.Repos {
			languages := make([]string, 0, len(repo.Languages))
			for lang := range repo.Languages {
				languages = append(languages, lang)
			}
			sort.Strings(languages)

			fmt.Printf("%-40s %5d files %6d symbols  %s  (%s)\n",
				repo.Repo, repo.FileCount, repo.SymbolCount,
				repo.IndexedAt.Format("2006-01-02 15:04"),
				strings.Join(languages, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reposCmd)
}
