package csv

import (
	"bytes"
	"encoding/csv"

	"promptforge/internal/ports"
)

type Exporter struct{}

func New() *Exporter { return &Exporter{} }

func (e *Exporter) Format() string { return "csv" }

func (e *Exporter) Export(items []ports.LibraryItem) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"name", "description", "instruction", "body"})
	for _, it := range items {
		_ = w.Write([]string{it.Name, it.Description, it.Instruction, it.Body})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
