package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableTracksWidestCell(t *testing.T) {
	table := NewTable([]string{"NAME", "STATE"})
	table.AddRow("HttpTrigger", "ready")
	table.AddRow("QueueProcessorWithLongName", "disabled")

	assert.Equal(t, len("QueueProcessorWithLongName"), table.widths[0])
	assert.Equal(t, len("disabled"), table.widths[1])
}

func TestTableAddRowArityMismatchPanics(t *testing.T) {
	table := NewTable([]string{"NAME", "STATE"})

	assert.Panics(t, func() {
		table.AddRow("only-one-value")
	})
}

func TestRenderTableContainsHeadersAndRows(t *testing.T) {
	table := NewTable([]string{"NAME", "STATE", "ROUTE"})
	table.AddRow("HttpTrigger", "ready", "api/products/{category}")
	table.AddRow("TimerFn", "disabled", "-")

	rendered := RenderTable(table)

	for _, want := range []string{"NAME", "STATE", "ROUTE", "HttpTrigger", "TimerFn", "api/products/{category}", "─"} {
		assert.Contains(t, rendered, want)
	}
}

func TestFitWidthsShrinksToTerminal(t *testing.T) {
	table := NewTable([]string{"NAME", "ROUTE"})
	table.AddRow("HttpTrigger", strings.Repeat("x", 120))

	widths := table.fitWidths(60)

	require.Len(t, widths, 2)
	assert.LessOrEqual(t, totalWidth(widths), 60)
	// Original widths stay untouched for the next render.
	assert.Equal(t, 120, table.widths[1])
}

func TestFitWidthsStopsAtMinimum(t *testing.T) {
	table := NewTable([]string{"A", "B", "C"})
	table.AddRow(strings.Repeat("x", 50), strings.Repeat("y", 50), strings.Repeat("z", 50))

	widths := table.fitWidths(10)

	for _, width := range widths {
		assert.GreaterOrEqual(t, width, minColumnWidth)
	}
}

func TestStyleStatusValueKnownStates(t *testing.T) {
	assert.Contains(t, StyleStatusValue("ready"), "ready")
	assert.Contains(t, StyleStatusValue("Ready"), "Ready")
	assert.Contains(t, StyleStatusValue("error"), ErrorSymbol)
	assert.Contains(t, StyleStatusValue("disabled"), "⊘")
}

func TestStyleStatusValueUnknownStatePassesThrough(t *testing.T) {
	assert.Equal(t, "draining", StyleStatusValue("draining"))
}
