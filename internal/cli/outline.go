package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codemunch/internal/mcp"
)

// outlineCmd represents the outline command
var outlineCmd = &cobra.Command{
	Use:   "outline <repo> <file>",
	Short: "Show the symbol outline of a file",
	Long: `Outline lists the symbols of one indexed file as a hierarchy:
methods nest under their class, inner functions under their parent.

Example:
  codemunch outline myproject src/auth.py`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, _, err := newService()
		if err != nil {
			return err
		}
		defer service.Close()

		result, err := service.FileOutline(context.Background(), args[0], args[1])
		if err != nil {
			return err
		}

		if len(result.Symbols) == 0 {
			fmt.Printf("No symbols found in %s\n", result.File)
			return nil
		}

		fmt.Printf("%s (%s)\n", result.File, result.Language)
		printOutline(result.Symbols, 1)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(outlineCmd)
}

func printOutline(nodes []mcp.OutlineNode, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, node := range nodes {
		line := fmt.Sprintf("%s%-8s %s", indent, node.Kind, node.Signature)
		if node.Summary != "" && node.Summary != node.Signature {
			line += "  - " + node.Summary
		}
		fmt.Printf("%s  [%s]\n", line, node.ID)
		printOutline(node.Children, depth+1)
	}
}
