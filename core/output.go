package core

import (
	"encoding/json"
	"fmt"
	"os"
)

// Printer handles all display output for the CLI.
type Printer struct {
	JSON   bool
	Writer *os.File
}

// NewPrinter creates a default Printer writing to stdout.
func NewPrinter(jsonMode bool) *Printer {
	return &Printer{JSON: jsonMode, Writer: os.Stdout}
}

// PrintMetadata renders a unified metadata record to the configured output.
func (p *Printer) PrintMetadata(path string, m *UnifiedMetadata) {
	if p.JSON {
		p.printJSON(path, m)
		return
	}
	p.printText(path, m)
}

func (p *Printer) printText(path string, m *UnifiedMetadata) {
	fmt.Fprintf(p.Writer, "File  : %s\n", path)
	fmt.Fprintf(p.Writer, "Format: %s\n", m.Format)
	if m.Dimensions.Width > 0 {
		fmt.Fprintf(p.Writer, "Size  : %d x %d\n", m.Dimensions.Width, m.Dimensions.Height)
	}
	if !m.HasMetadata && len(m.Fields) == 0 {
		fmt.Fprintln(p.Writer, "(no metadata found)")
		return
	}
	fmt.Fprintln(p.Writer)

	// Group by category, keeping first-seen order.
	groups := make(map[string][]MetaField)
	var order []string
	seen := map[string]bool{}
	for _, f := range m.Fields {
		if !seen[f.Category] {
			seen[f.Category] = true
			order = append(order, f.Category)
		}
		groups[f.Category] = append(groups[f.Category], f)
	}

	for _, cat := range order {
		fmt.Fprintf(p.Writer, "── %s ──\n", cat)
		for _, f := range groups[cat] {
			fmt.Fprintf(p.Writer, "  %-30s %s\n", f.Key+":", f.Value)
		}
		fmt.Fprintln(p.Writer)
	}
}

func (p *Printer) printJSON(path string, m *UnifiedMetadata) {
	type jsonField struct {
		Key      string `json:"key"`
		Value    string `json:"value"`
		Category string `json:"category"`
	}
	type jsonOutput struct {
		FilePath    string      `json:"file"`
		Format      string      `json:"format"`
		Width       int         `json:"width,omitempty"`
		Height      int         `json:"height,omitempty"`
		HasMetadata bool        `json:"hasMetadata"`
		Fields      []jsonField `json:"fields"`
	}

	out := jsonOutput{
		FilePath:    path,
		Format:      string(m.Format),
		Width:       m.Dimensions.Width,
		Height:      m.Dimensions.Height,
		HasMetadata: m.HasMetadata,
	}
	for _, f := range m.Fields {
		out.Fields = append(out.Fields, jsonField{Key: f.Key, Value: f.Value, Category: f.Category})
	}

	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Fprintln(p.Writer, string(b))
}

// PrintError prints an error to stderr.
func PrintError(msg string) {
	fmt.Fprintln(os.Stderr, "✗ Error: "+msg)
}
