package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codemunch/internal/mcp"
)

var treePrefix string

// treeCmd represents the tree command
var treeCmd = &cobra.Command{
	Use:   "tree <repo>",
	Short: "Show the file tree of an indexed repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, _, err := newService()
		if err != nil {
			return err
		}
		defer service.Close()

		result, err := service.FileTree(context.Background(), args[0], treePrefix)
		if err != nil {
			return err
		}

		fmt.Println(result.Repo)
		printTree(result.Tree, 1)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().StringVarP(&treePrefix, "prefix", "p", "", "Only show files under this path prefix")
}

func printTree(nodes []mcp.TreeNode, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, node := range nodes {
		if node.Type == "dir" {
			fmt.Printf("%s%s\n", indent, node.Path)
			printTree(node.Children, depth+1)
			continue
		}
		fmt.Printf("%s%s  (%s, %d symbols)\n", indent, node.Path, node.Language, node.SymbolCount)
	}
}
