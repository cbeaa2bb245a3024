package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools adds every code index tool to an MCP server. Each
// registration is composable and can be mixed with other tool sets.
func RegisterTools(s *server.MCPServer, service *Service) {
	AddIndexFolderTool(s, service)
	AddListReposTool(s, service)
	AddFileTreeTool(s, service)
	AddFileOutlineTool(s, service)
	AddGetSymbolTool(s, service)
	AddGetSymbolsTool(s, service)
	AddSearchSymbolsTool(s, service)
}

// AddIndexFolderTool registers the index_folder tool.
func AddIndexFolderTool(s *server.MCPServer, service *Service) {
	tool := mcp.NewTool(
		"index_folder",
		mcp.WithDescription("Index a local folder containing source code. Walks the directory, parses ASTs, extracts symbols, and saves to local storage. Works with any folder containing supported language files."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to local folder (absolute or relative)")),
	)

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}
		path, ok := args["path"].(string)
		if !ok || path == "" {
			return mcp.NewToolResultError("path parameter is required"), nil
		}

		result, err := service.IndexFolder(ctx, path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(result)
	})
}

// AddListReposTool registers the list_repos tool.
func AddListReposTool(s *server.MCPServer, service *Service) {
	tool := mcp.NewTool(
		"list_repos",
		mcp.WithDescription("List all indexed repositories."),
	)

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := service.ListRepos(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(result)
	})
}

// AddFileTreeTool registers the get_file_tree tool.
func AddFileTreeTool(s *server.MCPServer, service *Service) {
	tool := mcp.NewTool(
		"get_file_tree",
		mcp.WithDescription("Get the file tree of an indexed repository, optionally filtered by path prefix."),
		mcp.WithString("repo",
			mcp.Required(),
			mcp.Description("Repository identifier (owner/repo or just repo name)")),
		mcp.WithString("path_prefix",
			mcp.Description("Optional path prefix to filter (e.g., 'src/utils')")),
	)

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}
		repo, ok := args["repo"].(string)
		if !ok || repo == "" {
			return mcp.NewToolResultError("repo parameter is required"), nil
		}
		prefix, _ := args["path_prefix"].(string)

		result, err := service.FileTree(ctx, repo, prefix)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(result)
	})
}

// AddFileOutlineTool registers the get_file_outline tool.
func AddFileOutlineTool(s *server.MCPServer, service *Service) {
	tool := mcp.NewTool(
		"get_file_outline",
		mcp.WithDescription("Get all symbols (functions, classes, methods) in a file with signatures and summaries."),
		mcp.WithString("repo",
			mcp.Required(),
			mcp.Description("Repository identifier (owner/repo or just repo name)")),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Path to the file within the repository (e.g., 'src/main.py')")),
	)

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}
		repo, ok := args["repo"].(string)
		if !ok || repo == "" {
			return mcp.NewToolResultError("repo parameter is required"), nil
		}
		filePath, ok := args["file_path"].(string)
		if !ok || filePath == "" {
			return mcp.NewToolResultError("file_path parameter is required"), nil
		}

		result, err := service.FileOutline(ctx, repo, filePath)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(result)
	})
}

// AddGetSymbolTool registers the get_symbol tool.
func AddGetSymbolTool(s *server.MCPServer, service *Service) {
	tool := mcp.NewTool(
		"get_symbol",
		mcp.WithDescription("Get the full source code of a specific symbol. Use after identifying relevant symbols via get_file_outline or search_symbols."),
		mcp.WithString("repo",
			mcp.Required(),
			mcp.Description("Repository identifier (owner/repo or just repo name)")),
		mcp.WithString("symbol_id",
			mcp.Required(),
			mcp.Description("Symbol ID from get_file_outline or search_symbols")),
	)

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}
		repo, ok := args["repo"].(string)
		if !ok || repo == "" {
			return mcp.NewToolResultError("repo parameter is required"), nil
		}
		symbolID, ok := args["symbol_id"].(string)
		if !ok || symbolID == "" {
			return mcp.NewToolResultError("symbol_id parameter is required"), nil
		}

		result, err := service.Symbol(ctx, repo, symbolID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(result)
	})
}

// AddGetSymbolsTool registers the get_symbols batch tool.
func AddGetSymbolsTool(s *server.MCPServer, service *Service) {
	tool := mcp.NewTool(
		"get_symbols",
		mcp.WithDescription("Get full source code of multiple symbols in one call. Efficient for loading related symbols."),
		mcp.WithString("repo",
			mcp.Required(),
			mcp.Description("Repository identifier (owner/repo or just repo name)")),
		mcp.WithArray("symbol_ids",
			mcp.Required(),
			mcp.Description("List of symbol IDs to retrieve")),
	)

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}
		repo, ok := args["repo"].(string)
		if !ok || repo == "" {
			return mcp.NewToolResultError("repo parameter is required"), nil
		}
		rawIDs, ok := args["symbol_ids"].([]interface{})
		if !ok || len(rawIDs) == 0 {
			return mcp.NewToolResultError("symbol_ids parameter is required"), nil
		}
		ids := make([]string, 0, len(rawIDs))
		for _, raw := range rawIDs {
			if id, ok := raw.(string); ok {
				ids = append(ids, id)
			}
		}

		result, err := service.SymbolBatch(ctx, repo, ids)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(result)
	})
}

// AddSearchSymbolsTool registers the search_symbols tool.
func AddSearchSymbolsTool(s *server.MCPServer, service *Service) {
	tool := mcp.NewTool(
		"search_symbols",
		mcp.WithDescription("Search for symbols matching a query across the entire indexed repository. Returns matches with signatures and summaries."),
		mcp.WithString("repo",
			mcp.Required(),
			mcp.Description("Repository identifier (owner/repo or just repo name)")),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query (matches symbol names, signatures, summaries, docstrings)")),
		mcp.WithString("kind",
			mcp.Description("Optional filter by symbol kind"),
			mcp.Enum("function", "class", "method", "constant", "type")),
		mcp.WithString("file_pattern",
			mcp.Description("Optional glob pattern to filter files (e.g., 'src/**/*.py')")),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of results to return (default: 10)")),
	)

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}
		repo, ok := args["repo"].(string)
		if !ok || repo == "" {
			return mcp.NewToolResultError("repo parameter is required"), nil
		}
		query, ok := args["query"].(string)
		if !ok || query == "" {
			return mcp.NewToolResultError("query parameter is required"), nil
		}
		kind, _ := args["kind"].(string)
		filePattern, _ := args["file_pattern"].(string)
		maxResults := 10
		if raw, ok := args["max_results"].(float64); ok {
			maxResults = int(raw)
		}

		result, err := service.SearchSymbols(ctx, repo, query, kind, filePattern, maxResults)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(result)
	})
}

// jsonResult marshals a response as an MCP text result.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
