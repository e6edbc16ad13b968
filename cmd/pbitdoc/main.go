// Command pbitdoc renders Power BI templates (.pbit) into PDF documentation
// with an entity-relationship diagram.
//
// Usage:
//
//	pbitdoc render Sales.pbit               # writes Sales_erd_final.pdf
//	pbitdoc render Sales.pbit -o docs.pdf
//	pbitdoc inspect Sales.pbit              # prints the simplified model as JSON
//	pbitdoc serve                           # HTTP API and upload page on :5001
//	pbitdoc mcp                             # MCP server on stdin/stdout
//
// Settings are read from the environment and an optional .env file; see
// internal/config for the keys.
package main

import "os"

func main() {
	os.Exit(execute())
}
