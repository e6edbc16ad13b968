// Package pbitdoc turns Power BI template archives (.pbit) into PDF
// documentation with an entity-relationship diagram.
//
// Process runs the whole pipeline: the DataModelSchema entry is read from the
// archive, simplified into a schema.Model, assembled into document blocks and
// rendered to PDF in memory. Every call is independent; nothing is cached.
//
//	res, err := pbitdoc.Process(ctx, data, "Sales.pbit")
//	if err != nil {
//	    return err
//	}
//	os.WriteFile(res.Filename, res.PDF, 0o644)
package pbitdoc

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"

	"github.com/lvillar/pbitdoc/document"
	"github.com/lvillar/pbitdoc/schema"
)

// Result is a rendered document.
type Result struct {
	PDF         []byte
	Filename    string
	Model       *schema.Model
	Pages       int
	Fingerprint string
}

// Process renders the archive in data to PDF. filename is only used to
// suggest the output name. Any failure aborts the whole document and is
// returned as a *ProcessError.
func Process(ctx context.Context, data []byte, filename string, opts ...Option) (*Result, error) {
	cfg := newProcessConfig(opts)
	log := cfg.logger.With(slog.String("file", filename))

	text, err := ReadSchema(data)
	if err != nil {
		log.WarnContext(ctx, "reading archive failed", slog.Any("error", err))
		return nil, err
	}

	m, err := extract(text)
	if err != nil {
		log.WarnContext(ctx, "parsing schema failed", slog.Any("error", err))
		return nil, err
	}
	stats := m.Stats()
	log.DebugContext(ctx, "schema simplified",
		slog.Int("tables", stats.Tables),
		slog.Int("columns", stats.Columns),
		slog.Int("measures", stats.Measures),
		slog.Int("relationships", stats.Relationships),
	)

	fp := Fingerprint(text)
	renderOpts := cfg.render
	if cfg.fingerprint {
		renderOpts = append(renderOpts[:len(renderOpts):len(renderOpts)], document.WithFingerprintQR(fp))
	}

	var buf bytes.Buffer
	info, err := document.NewRenderer(renderOpts...).Render(&buf, document.Assemble(m))
	if err != nil {
		log.ErrorContext(ctx, "rendering failed", slog.Any("error", err))
		return nil, newProcessError(OpRender, ErrProcessing, err)
	}
	log.InfoContext(ctx, "document rendered",
		slog.Int("pages", info.Pages),
		slog.Int("bytes", buf.Len()),
		slog.Int("skippedEdges", info.Diagram.Skipped),
	)

	return &Result{
		PDF:         buf.Bytes(),
		Filename:    OutputFilename(filename),
		Model:       m,
		Pages:       info.Pages,
		Fingerprint: fp,
	}, nil
}

// Inspect reads and simplifies the archive in data without rendering.
func Inspect(data []byte) (*schema.Model, error) {
	text, err := ReadSchema(data)
	if err != nil {
		return nil, err
	}
	return extract(text)
}

func extract(text []byte) (*schema.Model, error) {
	m, err := schema.Extract(text)
	switch {
	case err == nil:
		return m, nil
	case errors.Is(err, schema.ErrSyntax):
		return nil, newProcessError(OpParse, ErrMalformedSchema, err)
	default:
		return nil, newProcessError(OpSimplify, ErrProcessing, err)
	}
}

// OutputFilename derives the suggested PDF name by replacing every ".pbit"
// in name with "_erd_final.pdf". The match is case-sensitive; a name without
// ".pbit" is returned unchanged.
func OutputFilename(name string) string {
	return strings.ReplaceAll(name, ".pbit", "_erd_final.pdf")
}

// Fingerprint returns the hex SHA-256 of the decoded schema text.
func Fingerprint(text []byte) string {
	sum := sha256.Sum256(text)
	return hex.EncodeToString(sum[:])
}
