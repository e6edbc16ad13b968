package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lvillar/pbitdoc"
)

// RegisterDefaultTools adds the .pbit tools to the server. opts are applied
// to every render.
func RegisterDefaultTools(s *Server, opts ...pbitdoc.Option) {
	s.AddTool(renderPBITTool(opts))
	s.AddTool(inspectPBITTool())
	s.AddTool(suggestOutputNameTool())
}

func pathArg(args map[string]interface{}) (string, error) {
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return "", fmt.Errorf("missing 'path' argument")
	}
	return path, nil
}

func renderPBITTool(opts []pbitdoc.Option) Tool {
	return Tool{
		Name:        "render_pbit",
		Description: "Render a Power BI template (.pbit) into PDF documentation with an index, per-table details, an ERD diagram and a relationship summary. Returns the PDF as base64 unless outputPath is given.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Path to the .pbit file",
				},
				"outputPath": map[string]interface{}{
					"type":        "string",
					"description": "Optional file path to save the PDF. Use \"auto\" to write next to the input with the suggested name.",
				},
			},
			"required": []string{"path"},
		},
		Handler: func(args map[string]interface{}) (ToolResult, error) {
			return handleRenderPBIT(args, opts)
		},
	}
}

func handleRenderPBIT(args map[string]interface{}, opts []pbitdoc.Option) (ToolResult, error) {
	path, err := pathArg(args)
	if err != nil {
		return ToolResult{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ToolResult{}, fmt.Errorf("reading file: %w", err)
	}

	res, err := pbitdoc.Process(context.Background(), data, filepath.Base(path), opts...)
	if err != nil {
		return ToolResult{}, fmt.Errorf("processing failed: %s", pbitdoc.Message(err))
	}

	if outputPath, ok := args["outputPath"].(string); ok && outputPath != "" {
		if outputPath == "auto" {
			name := res.Filename
			if name == filepath.Base(path) {
				name += ".pdf"
			}
			outputPath = filepath.Join(filepath.Dir(path), name)
		}
		if err := os.WriteFile(outputPath, res.PDF, 0644); err != nil {
			return ToolResult{}, fmt.Errorf("writing file: %w", err)
		}
		return ToolResult{
			Content: []ContentBlock{{
				Type: "text",
				Text: fmt.Sprintf("PDF created successfully: %s (%d pages, %d bytes)", outputPath, res.Pages, len(res.PDF)),
			}},
		}, nil
	}

	encoded := base64.StdEncoding.EncodeToString(res.PDF)
	return ToolResult{
		Content: []ContentBlock{{
			Type: "text",
			Text: fmt.Sprintf("PDF %s created successfully (%d pages, %d bytes). Base64 data:\n%s", res.Filename, res.Pages, len(res.PDF), encoded),
		}},
	}, nil
}

func inspectPBITTool() Tool {
	return Tool{
		Name:        "inspect_pbit",
		Description: "Extract the simplified schema (tables, columns, measures, relationships) from a .pbit file as JSON, with counts.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Path to the .pbit file",
				},
			},
			"required": []string{"path"},
		},
		Handler: handleInspectPBIT,
	}
}

func handleInspectPBIT(args map[string]interface{}) (ToolResult, error) {
	path, err := pathArg(args)
	if err != nil {
		return ToolResult{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ToolResult{}, fmt.Errorf("reading file: %w", err)
	}

	m, err := pbitdoc.Inspect(data)
	if err != nil {
		return ToolResult{}, fmt.Errorf("processing failed: %s", pbitdoc.Message(err))
	}

	info := map[string]interface{}{
		"stats": m.Stats(),
		"model": m,
	}
	jsonBytes, _ := json.MarshalIndent(info, "", "  ")
	return ToolResult{
		Content: []ContentBlock{{Type: "text", Text: string(jsonBytes)}},
	}, nil
}

func suggestOutputNameTool() Tool {
	return Tool{
		Name:        "suggest_output_name",
		Description: "Return the PDF file name the renderer suggests for an input file name.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"filename": map[string]interface{}{
					"type":        "string",
					"description": "Input file name, e.g. Sales.pbit",
				},
			},
			"required": []string{"filename"},
		},
		Handler: handleSuggestOutputName,
	}
}

func handleSuggestOutputName(args map[string]interface{}) (ToolResult, error) {
	name, ok := args["filename"].(string)
	if !ok {
		return ToolResult{}, fmt.Errorf("missing 'filename' argument")
	}
	return ToolResult{
		Content: []ContentBlock{{Type: "text", Text: pbitdoc.OutputFilename(name)}},
	}, nil
}
