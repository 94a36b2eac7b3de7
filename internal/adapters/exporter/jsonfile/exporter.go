package jsonfile

import (
	"encoding/json"

	"promptforge/internal/ports"
)

type Exporter struct{}

func New() *Exporter { return &Exporter{} }

func (e *Exporter) Format() string { return "json" }

type item struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Instruction string `json:"instruction"`
	Body        string `json:"body"`
}

func (e *Exporter) Export(items []ports.LibraryItem) ([]byte, error) {
	out := make([]item, 0, len(items))
	for _, it := range items {
		out = append(out, item(it))
	}
	return json.MarshalIndent(out, "", "  ")
}
