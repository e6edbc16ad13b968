package mcp

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/lvillar/pbitdoc"
	"github.com/lvillar/pbitdoc/diagram"
	"github.com/lvillar/pbitdoc/document"
	"github.com/lvillar/pbitdoc/schema"
)

// RegisterDefaultResources adds the .pbit resources to the server.
// Resources use URI templates with the pbit:// scheme.
func RegisterDefaultResources(s *Server) {
	s.AddResource(Resource{
		URI:         "pbit://schema",
		Name:        "Simplified Schema",
		Description: "Simplified data model of a .pbit file. Pass the file path as a query parameter: pbit://schema?path=/path/to/file.pbit",
		MIMEType:    "application/json",
		Handler:     handleSchemaResource,
	})

	s.AddResource(Resource{
		URI:         "pbit://diagram",
		Name:        "ERD Layout",
		Description: "Diagram layout (boxes, edges and drawing commands) for a .pbit file. Pass the file path as a query parameter: pbit://diagram?path=/path/to/file.pbit",
		MIMEType:    "application/json",
		Handler:     handleDiagramResource,
	})
}

func extractPathFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return u.Query().Get("path")
}

func readModelResource(uri string) (*schema.Model, error) {
	path := extractPathFromURI(uri)
	if path == "" {
		return nil, fmt.Errorf("missing 'path' parameter in URI")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	m, err := pbitdoc.Inspect(data)
	if err != nil {
		return nil, fmt.Errorf("processing failed: %s", pbitdoc.Message(err))
	}
	return m, nil
}

func handleSchemaResource(uri string) ([]ResourceContent, error) {
	m, err := readModelResource(uri)
	if err != nil {
		return nil, err
	}
	return jsonContent(uri, m), nil
}

func handleDiagramResource(uri string) ([]ResourceContent, error) {
	m, err := readModelResource(uri)
	if err != nil {
		return nil, err
	}
	story := document.Assemble(m)
	d := diagram.Layout(m.Tables, m.Relationships, story.Destinations, document.DiagramSize)
	return jsonContent(uri, d), nil
}

func jsonContent(uri string, v interface{}) []ResourceContent {
	jsonBytes, _ := json.MarshalIndent(v, "", "  ")
	return []ResourceContent{{
		URI:      uri,
		MIMEType: "application/json",
		Text:     string(jsonBytes),
	}}
}
