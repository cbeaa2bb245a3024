package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// symbolCmd represents the symbol command
var symbolCmd = &cobra.Command{
	Use:   "symbol <repo> <symbol-id>",
	Short: "Print the full source of a symbol",
	Long: `Symbol prints the source code of one symbol by its ID, as reported
by 'codemunch outline' or 'codemunch search'.

Example:
  codemunch symbol myproject src-auth-py::Session.renew`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, _, err := newService()
		if err != nil {
			return err
		}
		defer service.Close()

		detail, err := service.Symbol(context.Background(), args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Printf("// %s:%d-%d  %s %s\n", detail.File, detail.Line, detail.EndLine, detail.Kind, detail.Name)
		for _, decorator := range detail.Decorators {
			fmt.Println(decorator)
		}
		fmt.Println(detail.Source)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(symbolCmd)
}
