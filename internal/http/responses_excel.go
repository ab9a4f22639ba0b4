package httpapi

import (
	"bytes"
	"fmt"

	"wisefido-fields/internal/service"

	"github.com/xuri/excelize/v2"
)

// UserFieldsExportHeader 员工字段导出表头
var UserFieldsExportHeader = []string{
	"Field",
	"Type",
	"Required",
	"Active",
	"Value",
}

// GenerateUserFieldsExport 生成某个员工字段填写情况的 xlsx
func GenerateUserFieldsExport(res *service.UserFieldsResult) ([]byte, error) {
	f := excelize.NewFile()
	// Note: Don't defer Close() here, because WriteTo needs the file to be open

	sheetName := "Custom Fields"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	// 第一行：用户摘要
	userLine := fmt.Sprintf("%s <%s> (%s)", res.User.Name, res.User.Email, res.User.Role)
	if err := f.SetCellValue(sheetName, "A1", userLine); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set user cell: %w", err)
	}

	// 第二行：表头
	for col, header := range UserFieldsExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 2)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	columnWidths := []float64{30, 12, 10, 10, 40}
	for col, width := range columnWidths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to resolve column name: %w", err)
		}
		if err := f.SetColWidth(sheetName, name, name, width); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, fv := range res.Fields {
		row := i + 3
		value := ""
		if fv.Value != nil {
			value = *fv.Value
		}
		cells := []any{fv.Label, string(fv.Type), fv.IsRequired, fv.IsActive, value}
		for col, v := range cells {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf.Bytes(), nil
}
