package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timetableDataset() Dataset {
	return Dataset{
		Title:   "Weekly timetable",
		Headers: []string{"Slot", "Monday", "Tuesday"},
		Rows: [][]string{
			{"MORNING_1", "CS101-A (Morning 1)\nMA201-B (Morning 1)", ""},
			{"AFTERNOON_2", "", "DB-P1 (Afternoon 2)"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(timetableDataset())
	require.NoError(t, err)

	expected := "Slot,Monday,Tuesday\n" +
		"MORNING_1,CS101-A (Morning 1); MA201-B (Morning 1),\n" +
		"AFTERNOON_2,,DB-P1 (Afternoon 2)\n"
	assert.Equal(t, expected, string(out))
}

func TestCSVExporterPadsShortRows(t *testing.T) {
	out, err := NewCSVExporter().Render(Dataset{Headers: []string{"a", "b"}, Rows: [][]string{{"1"}}})
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,\n", string(out))
}

func TestExportersRejectInvalidDatasets(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)

	_, err = NewPDFExporter().Render(Dataset{Headers: []string{"a"}, Rows: [][]string{{"1", "2"}}})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(timetableDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestColumnWidthsFillPage(t *testing.T) {
	widths := columnWidths(8)
	total := 0.0
	for _, w := range widths {
		total += w
	}
	assert.InDelta(t, pdfPageWidth, total, 0.001)
	assert.Equal(t, []float64{pdfPageWidth}, columnWidths(1))
}
