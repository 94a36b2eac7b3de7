package csvparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	data := []byte("name,description,instruction,body\nsummarizer,short,be terse,Summarize {{text}}.\n,skipped,,x\n")
	items, err := New().Parse(data)
	require.NoError(t, err)
	require.Len(t, items, 1, "rows without a name are skipped")
	assert.Equal(t, "summarizer", items[0].Name)
	assert.Equal(t, "Summarize {{text}}.", items[0].Body)
}

func TestParseStripsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("name,body\na,b\n")...)
	items, err := New().Parse(data)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].Name)
}

func TestParseMissingColumns(t *testing.T) {
	_, err := New().Parse([]byte("title,body\na,b\n"))
	assert.Error(t, err)

	_, err = New().Parse([]byte("name,text\na,b\n"))
	assert.Error(t, err)
}

func TestParseColumnOrderIrrelevant(t *testing.T) {
	items, err := New().Parse([]byte("body,name\nthe body,the name\n"))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "the name", items[0].Name)
	assert.Equal(t, "the body", items[0].Body)
}
