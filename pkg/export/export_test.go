package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statementDataset() Dataset {
	return Dataset{
		Headers: []string{"Date", "Amount", "Status"},
		Rows: []map[string]string{
			{"Date": "2026-10-01", "Amount": "150,00 zł", "Status": "completed"},
			{"Date": "2026-10-08", "Amount": "50,00 zł", "Status": "pending"},
		},
		Footer: [][2]string{{"Balance owed", "50,00 zł"}},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(statementDataset())
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(out), []byte("\n"))
	require.Len(t, lines, 4)
	assert.Equal(t, "Date;Amount;Status", string(lines[0]))
	assert.Equal(t, "Balance owed;;50,00 zł", string(lines[3]))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(statementDataset(), "Wyciąg płatności", "Jan Kowalski")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
