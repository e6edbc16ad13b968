package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Errors returned by Parse. Syntax problems and shape problems are kept apart
// so callers can classify them differently.
var (
	ErrSyntax          = errors.New("schema: invalid JSON")
	ErrUnexpectedShape = errors.New("schema: unexpected field shape")
)

const (
	sourcePrefix     = "Source: "
	sourceTypePrefix = "Source type: "
	sourceEllipsis   = "..."
	sourceLines      = 2
)

// Raw is the decoded DataModelSchema document. Only the fields needed for
// simplification are decoded; everything else is ignored. Optional scalars are
// pointers so that absence is explicit.
type Raw struct {
	Model *rawModel `json:"model"`
}

type rawModel struct {
	Tables        []rawTable        `json:"tables"`
	Relationships []rawRelationship `json:"relationships"`
}

type rawTable struct {
	Name *string `json:"name"`
	// Descriptions, like expressions, may be stored as an array of lines.
	Description json.RawMessage `json:"description"`
	Partitions  []rawPartition  `json:"partitions"`
	Columns     []rawColumn     `json:"columns"`
	Measures    []rawMeasure    `json:"measures"`
}

type rawPartition struct {
	Source *rawSource `json:"source"`
}

type rawSource struct {
	// Expression is usually an array of M lines but may be a single string.
	Expression json.RawMessage `json:"expression"`
	Type       *string         `json:"type"`
}

type rawColumn struct {
	Name        *string         `json:"name"`
	DataType    *string         `json:"dataType"`
	Description json.RawMessage `json:"description"`
}

type rawMeasure struct {
	Name        *string         `json:"name"`
	Expression  json.RawMessage `json:"expression"`
	Description json.RawMessage `json:"description"`
}

type rawRelationship struct {
	FromTable  *string `json:"fromTable"`
	FromColumn *string `json:"fromColumn"`
	ToTable    *string `json:"toTable"`
	ToColumn   *string `json:"toColumn"`
}

// Parse decodes a DataModelSchema document. Malformed JSON wraps ErrSyntax;
// well-formed JSON whose fields have unexpected types wraps ErrUnexpectedShape.
func Parse(text []byte) (*Raw, error) {
	var raw Raw
	if err := json.Unmarshal(text, &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return &raw, nil
}

// Extract parses text and simplifies the result.
func Extract(text []byte) (*Model, error) {
	raw, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return Simplify(raw), nil
}

// Simplify reduces a raw document to a Model, preserving the order of tables,
// columns, measures and relationships.
func Simplify(raw *Raw) *Model {
	m := &Model{
		Tables:        []Table{},
		Relationships: []Relationship{},
	}
	if raw == nil || raw.Model == nil {
		return m
	}

	for _, rt := range raw.Model.Tables {
		t := Table{
			Name:        deref(rt.Name),
			Description: joinLines(rt.Description),
			Source:      sourceLabel(rt.Partitions),
			Columns:     make([]Column, 0, len(rt.Columns)),
			Measures:    make([]Measure, 0, len(rt.Measures)),
		}
		for _, c := range rt.Columns {
			t.Columns = append(t.Columns, Column{
				Name:        deref(c.Name),
				DataType:    deref(c.DataType),
				Description: joinLines(c.Description),
			})
		}
		for _, ms := range rt.Measures {
			t.Measures = append(t.Measures, Measure{
				Name:        deref(ms.Name),
				Expression:  joinLines(ms.Expression),
				Description: joinLines(ms.Description),
			})
		}
		m.Tables = append(m.Tables, t)
	}

	for _, rr := range raw.Model.Relationships {
		m.Relationships = append(m.Relationships, Relationship{
			FromTable:  deref(rr.FromTable),
			FromColumn: deref(rr.FromColumn),
			ToTable:    deref(rr.ToTable),
			ToColumn:   deref(rr.ToColumn),
		})
	}
	return m
}

// sourceLabel describes where a table's data comes from. Only the first
// partition is consulted.
func sourceLabel(partitions []rawPartition) string {
	if len(partitions) == 0 || partitions[0].Source == nil {
		return ""
	}
	src := partitions[0].Source
	if lines := textLines(src.Expression); len(lines) > 0 {
		n := min(sourceLines, len(lines))
		return sourcePrefix + strings.Join(lines[:n], " ") + sourceEllipsis
	}
	if src.Type != nil {
		return sourceTypePrefix + *src.Type
	}
	return ""
}

// textLines coerces a JSON value to lines of text. Strings are split on
// newlines, arrays yield one line per element, null or absent yields nothing,
// and any other value is rendered as compact JSON.
func textLines(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
		return strings.Split(t, "\n")
	case []any:
		lines := make([]string, 0, len(t))
		for _, item := range t {
			lines = append(lines, scalarText(item))
		}
		return lines
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return []string{string(raw)}
		}
		return []string{buf.String()}
	}
}

// joinLines coerces a JSON value to a single newline-separated string.
func joinLines(raw json.RawMessage) string {
	return strings.Join(textLines(raw), "\n")
}

func scalarText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
