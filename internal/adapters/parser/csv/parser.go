package csvparser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"promptforge/internal/ports"
)

type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) Format() string { return "csv" }

func (p *Parser) Parse(data []byte) ([]ports.LibraryItem, error) {
	data = stripBOM(data)
	r := csv.NewReader(bufio.NewReader(bytes.NewReader(data)))
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if err != nil {
		return nil, err
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	nameIdx, ok := idx["name"]
	if !ok {
		return nil, errors.New("csv missing 'name' column")
	}
	bodyIdx, ok := idx["body"]
	if !ok {
		return nil, errors.New("csv missing 'body' column")
	}
	col := func(rec []string, name string) string {
		if i, ok := idx[name]; ok && i < len(rec) {
			return rec[i]
		}
		return ""
	}
	var items []ports.LibraryItem
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if rec[nameIdx] == "" {
			continue
		}
		items = append(items, ports.LibraryItem{
			Name:        rec[nameIdx],
			Description: col(rec, "description"),
			Instruction: col(rec, "instruction"),
			Body:        rec[bodyIdx],
		})
	}
	return items, nil
}

func stripBOM(b []byte) []byte {
	bom := []byte{0xEF, 0xBB, 0xBF}
	if len(b) >= 3 && bytes.Equal(b[:3], bom) {
		return b[3:]
	}
	return b
}
