package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"table", "json", "yaml", "JSON"} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseFormat("tsv")
	assert.Error(t, err)
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, FormatTable)

	require.NoError(t, r.RenderTable([]string{"NAME", "SIZE"}, [][]string{
		{"catima.csv", "1 kB"},
		{"card_1_icon.png", "12 B"},
	}))

	want := "NAME             SIZE\n" +
		"---------------  ----\n" +
		"catima.csv       1 kB\n" +
		"card_1_icon.png  12 B\n"
	assert.Equal(t, want, buf.String())
}

func TestRenderTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatTable).RenderTable([]string{"NAME"}, nil))
	assert.Empty(t, buf.String())
}

func TestRenderKeyValues(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, FormatTable)

	require.NoError(t, r.RenderKeyValues([]KeyValue{
		{Key: "version", Value: "2"},
		{Key: "cards", Value: "4"},
	}))
	assert.Equal(t, "version:  2\ncards:    4\n", buf.String())
}

func TestRender(t *testing.T) {
	data := map[string]int{"cards": 4}

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatJSON).Render(data))
	assert.JSONEq(t, `{"cards": 4}`, buf.String())

	buf.Reset()
	require.NoError(t, NewRenderer(&buf, FormatYAML).Render(data))
	assert.YAMLEq(t, "cards: 4\n", buf.String())

	assert.Error(t, NewRenderer(&buf, FormatTable).Render(data))
}
