// Command pbitdoc-mcp is an MCP (Model Context Protocol) server that exposes
// Power BI template documentation to AI assistants.
//
// # Installation
//
//	go install github.com/lvillar/pbitdoc/cmd/pbitdoc-mcp@latest
//
// # Configuration for Claude Desktop
//
// Add to ~/.config/claude/claude_desktop_config.json:
//
//	{
//	  "mcpServers": {
//	    "pbitdoc": {
//	      "command": "pbitdoc-mcp"
//	    }
//	  }
//	}
//
// # Available Tools
//
//   - render_pbit: Render a .pbit template to PDF documentation
//   - inspect_pbit: Print the simplified data model as JSON
//   - suggest_output_name: Derive the PDF name for a template
//
// # Available Resources
//
//   - pbit://schema?path=... : Simplified data model
//   - pbit://diagram?path=... : ERD layout (boxes and edges)
//
// Rendering settings come from the same environment keys as the pbitdoc
// command (PBITDOC_AUTHOR, PBITDOC_LETTERHEAD, ...).
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lvillar/pbitdoc/internal/config"
	"github.com/lvillar/pbitdoc/mcp"
)

func main() {
	cfg, err := config.Load(".env")
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "pbitdoc-mcp: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	server := mcp.NewServer()
	server.SetLogger(logger)

	mcp.RegisterDefaultTools(server, cfg.ProcessOptions(logger)...)
	mcp.RegisterDefaultResources(server)

	if err := server.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "pbitdoc-mcp: %v\n", err)
		os.Exit(1)
	}
}
