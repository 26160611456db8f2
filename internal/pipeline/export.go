package pipeline

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/xuri/excelize/v2"

	"itemdb/internal"
)

var exportHeaders = []string{
	"score", "item", "tag", "diy", "raw_value", "price", "profit", "margin", "notes", "recipes",
}

// ExportToXLSX replaces outputPath atomically, so readers never see a partial
// workbook.
func ExportToXLSX(results []internal.Result, outputPath string) error {
	var buf bytes.Buffer
	if err := WriteXLSX(results, &buf); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return atomic.WriteFile(outputPath, &buf)
}

// WriteXLSX streams the same workbook ExportToXLSX saves.
func WriteXLSX(results []internal.Result, w io.Writer) error {
	f := buildWorkbook(results)
	defer f.Close()

	_, err := f.WriteTo(w)
	return err
}

func buildWorkbook(results []internal.Result) *excelize.File {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, res := range results {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		item := res.Item
		set(1, res.Score)
		set(2, item.Name)
		set(3, item.Tag)
		set(4, item.DIYText)
		set(5, numberCell(item.RawValue))
		set(6, numberCell(item.Price))
		set(7, numberCell(item.Profit))
		set(8, numberCell(item.Margin))
		set(9, item.Notes)
		set(10, item.Recipes)
	}
	return f
}

// numberCell writes parsed values as numbers and keeps unparsable text as is.
func numberCell(n internal.Number) any {
	if n.Valid {
		return n.Value
	}
	return n.Raw
}
