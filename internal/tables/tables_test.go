package tables

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTables(t *testing.T) {
	text := "Intro paragraph.\n" +
		"Table 73.1 Causes of Hyponatremia\n" +
		"Pseudohyponatremia   Hyperlipidemia\n" +
		"Hypervolemic   Heart failure\n" +
		"\n" +
		"Body text continues.\n" +
		"Table 73-2 Single Row\n" +
		"Only one row\n" +
		"\n" +
		"Table 73.3 Treatment\n" +
		"Row A\n" +
		"Row B\n"

	got := Extract(text)
	require.Len(t, got, 2)

	assert.Equal(t, "Table 73.1 Causes of Hyponatremia", got[0].Title)
	assert.Equal(t, []string{"Pseudohyponatremia   Hyperlipidemia", "Hypervolemic   Heart failure"}, got[0].Rows)
	assert.Equal(t, strings.Index(text, "Table 73.1"), got[0].Position)

	assert.Equal(t, "Table 73.3 Treatment", got[1].Title)
	assert.Equal(t, []string{"Row A", "Row B"}, got[1].Rows)
	assert.Equal(t, strings.Index(text, "Table 73.3"), got[1].Position)
}

func TestExtractCapsRows(t *testing.T) {
	var b strings.Builder
	b.WriteString("Table 1.1 Long\n")
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&b, "row %d\n", i)
	}
	got := Extract(b.String())
	require.Len(t, got, 1)
	assert.Len(t, got[0].Rows, MaxRows)
	assert.Equal(t, "row 0", got[0].Rows[0])
}

func TestExtractNone(t *testing.T) {
	assert.Empty(t, Extract("No tables here.\nSee Table 4 for details."))
}
