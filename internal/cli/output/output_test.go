package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{name: "table", input: "table", want: FormatTable},
		{name: "empty defaults to table", input: "", want: FormatTable},
		{name: "json", input: "json", want: FormatJSON},
		{name: "JSON uppercase", input: "JSON", want: FormatJSON},
		{name: "yaml", input: "yaml", want: FormatYAML},
		{name: "yml alias", input: "yml", want: FormatYAML},
		{name: "whitespace trimmed", input: "  table  ", want: FormatTable},
		{name: "invalid format", input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type folderRow struct {
	Name string `json:"name" yaml:"name"`
	ID   string `json:"id" yaml:"id"`
}

func TestPrint(t *testing.T) {
	table := NewTableData("Name", "ID")
	table.AddRow("SchoolA", "f-1")

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Print(&buf, FormatTable, table))
		assert.Contains(t, buf.String(), "NAME")
		assert.Contains(t, buf.String(), "SchoolA")
		assert.Contains(t, buf.String(), "f-1")
	})

	t.Run("table falls back to json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Print(&buf, FormatTable, folderRow{Name: "SchoolA", ID: "f-1"}))
		assert.Contains(t, buf.String(), `"name": "SchoolA"`)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Print(&buf, FormatYAML, []folderRow{{Name: "SchoolA", ID: "f-1"}}))
		assert.Contains(t, buf.String(), "name: SchoolA")
		assert.Contains(t, buf.String(), "id: f-1")
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, Print(&bytes.Buffer{}, Format("xml"), table))
	})
}

func TestSimpleTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SimpleTable(&buf, [][2]string{
		{"Drive", "connected"},
		{"Cache", "12"},
	}))

	out := buf.String()
	assert.Contains(t, out, "Drive")
	assert.Contains(t, out, "connected")
	assert.Contains(t, out, "Cache")
}
