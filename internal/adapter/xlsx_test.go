package adapter

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vk/transtab/internal/table"
)

func TestXLSX_WritePresentation(t *testing.T) {
	// --- Arrange ---
	path := filepath.Join(t.TempDir(), "out.xlsx")
	tbl := table.FromStrings(true, [][]string{{"item", "note"}, {"Orange", "two\nlines"}})

	// --- Act ---
	err := XLSX{}.Write(context.Background(), path, tbl, Options{Sheet: "Produce"})

	// --- Assert ---
	require.NoError(t, err)
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Produce"}, f.GetSheetList())

	boldIdx, err := f.GetCellStyle("Produce", "A1")
	require.NoError(t, err)
	bold, err := f.GetStyle(boldIdx)
	require.NoError(t, err)
	require.NotNil(t, bold.Font)
	assert.True(t, bold.Font.Bold)

	wrapIdx, err := f.GetCellStyle("Produce", "B2")
	require.NoError(t, err)
	wrap, err := f.GetStyle(wrapIdx)
	require.NoError(t, err)
	require.NotNil(t, wrap.Alignment)
	assert.True(t, wrap.Alignment.WrapText)

	panes, err := f.GetPanes("Produce")
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.YSplit)
}

func TestXLSX_RoundTripKeepsTypes(t *testing.T) {
	// --- Arrange ---
	path := filepath.Join(t.TempDir(), "out.xlsx")
	want := sample()

	// --- Act ---
	require.NoError(t, XLSX{}.Write(context.Background(), path, want, Options{}))
	got, err := XLSX{}.Read(context.Background(), path, Options{HasHeader: true})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, want.Strings(), got.Strings())
	assert.Equal(t, table.KindNumber, got.Cell(0, 1).Kind())
	assert.Equal(t, table.KindTime, got.Cell(0, 3).Kind())
	assert.Equal(t, table.KindText, got.Cell(0, 0).Kind())
}

func TestXLSX_ReadSelectsSheet(t *testing.T) {
	// --- Arrange ---
	path := filepath.Join(t.TempDir(), "in.xlsx")
	f := excelize.NewFile()
	_, err := f.NewSheet("Second")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "first"))
	require.NoError(t, f.SetCellValue("Second", "A1", "second"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	// --- Act ---
	first, err := XLSX{}.Read(context.Background(), path, Options{})
	require.NoError(t, err)
	second, err := XLSX{}.Read(context.Background(), path, Options{InputSheet: "Second"})
	require.NoError(t, err)

	// --- Assert ---
	assert.Equal(t, [][]string{{"first"}}, first.Strings())
	assert.Equal(t, [][]string{{"second"}}, second.Strings())
}

func TestIsDateFormat(t *testing.T) {
	assert.True(t, isDateFormat("yyyy-mm-dd"))
	assert.True(t, isDateFormat("[$-409]h:mm AM/PM"))
	assert.False(t, isDateFormat(`0.00"days"`))
	assert.False(t, isDateFormat("[Red]0.00"))
}
