package transport

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RecommendToolsTool returns the MCP tool definition for recommend_tools.
func RecommendToolsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "recommend_tools",
		Description: "Find the most relevant tools for a task description. Returns the full source code of each recommended tool, whether a new tool should be created instead of updating the best match, and an optional related registry tool.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query_description": map[string]any{
					"type":        "string",
					"description": "Description of what you want to do. Tools are ranked by relevance to this description.",
				},
				"top_k": map[string]any{
					"type":        "integer",
					"description": "Number of top tools to return (default: 2).",
				},
			},
			"required": []string{"query_description"},
		},
	}
}

// ScanToolsDirectoryTool returns the MCP tool definition for scan_tools_directory.
func ScanToolsDirectoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "scan_tools_directory",
		Description: "Scan a directory tree for Python tool classes and replace the active catalog with the result. Nothing in the directory is imported or executed.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"directory_path": map[string]any{
					"type":        "string",
					"description": "Path of the directory to scan recursively for *.py files.",
				},
			},
			"required": []string{"directory_path"},
		},
	}
}

// ListToolsTool returns the MCP tool definition for list_tools.
func ListToolsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_tools",
		Description: "List every tool in the current catalog with name, description and location, without source code.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
			"required":   []string{},
		},
	}
}
