package jsonfile

import (
	"encoding/json"

	"promptforge/internal/ports"
)

type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) Format() string { return "json" }

type item struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Instruction string `json:"instruction"`
	Body        string `json:"body"`
}

func (p *Parser) Parse(data []byte) ([]ports.LibraryItem, error) {
	var in []item
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	out := make([]ports.LibraryItem, 0, len(in))
	for _, it := range in {
		out = append(out, ports.LibraryItem(it))
	}
	return out, nil
}
