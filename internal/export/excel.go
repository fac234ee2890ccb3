package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"itscare/internal/csvio"
	"itscare/internal/finance"
	"itscare/internal/models"
	"itscare/internal/summary"

	"github.com/xuri/excelize/v2"
)

const (
	bookingSheet = "예약목록"
	summarySheet = "정산요약"
)

// MonthlyWorkbook builds the settlement workbook for one month: a
// booking list sheet with computed fee/net columns and a summary sheet
// with the totals plus per-contractor and per-engineer breakdowns.
func MonthlyWorkbook(bookings []models.Booking, monthly summary.Monthly, policy finance.CommissionPolicy) (*excelize.File, error) {
	if policy == nil {
		policy = finance.DefaultPolicy()
	}

	f := excelize.NewFile()

	if err := writeBookingSheet(f, bookings, monthly.Month, policy); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSummarySheet(f, monthly); err != nil {
		f.Close()
		return nil, err
	}

	_ = f.DeleteSheet("Sheet1")
	if index, err := f.GetSheetIndex(bookingSheet); err == nil {
		f.SetActiveSheet(index)
	}
	return f, nil
}

// SaveMonthly writes the workbook into dir as
// settlement_YYYY-MM.xlsx and returns the full path.
func SaveMonthly(dir string, bookings []models.Booking, monthly summary.Monthly, policy finance.CommissionPolicy) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	f, err := MonthlyWorkbook(bookings, monthly, policy)
	if err != nil {
		return "", err
	}
	defer f.Close()

	path := filepath.Join(dir, fmt.Sprintf("settlement_%s.xlsx", monthly.Month))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}

func writeBookingSheet(f *excelize.File, bookings []models.Booking, month string, policy finance.CommissionPolicy) error {
	index, err := f.NewSheet(bookingSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(bookingSheet, "A1", fmt.Sprintf("%s 예약 내역", month))
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	lastCol, _ := excelize.ColumnNumberToName(len(csvio.ExportHeaders))
	_ = f.MergeCell(bookingSheet, "A1", lastCol+"1")
	_ = f.SetCellStyle(bookingSheet, "A1", "A1", titleStyle)

	writeHeaderRow(f, bookingSheet, 2, csvio.ExportHeaders)

	row := 3
	for _, b := range bookings {
		if !strings.HasPrefix(b.BookDate, month) {
			continue
		}
		fin := policy.Calculate(b)
		cells := []interface{}{
			b.Customer, b.Phone, b.Address, b.Group, b.Model, string(b.Type),
			b.Qty, string(b.Scope), b.BookDate, b.ScheduleLabel(),
			b.Engineer, b.Contractor, b.CommissionRate, fin.Total,
			amountCell(fin.Fee), amountCell(fin.Net), string(b.Paid), b.Memo,
		}
		writeRow(f, bookingSheet, row, cells)
		row++
	}

	_ = f.SetColWidth(bookingSheet, "A", "A", 14)
	_ = f.SetColWidth(bookingSheet, "B", "C", 20)
	_ = f.SetColWidth(bookingSheet, "D", lastCol, 12)
	return nil
}

func writeSummarySheet(f *excelize.File, monthly summary.Monthly) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	_ = f.SetCellValue(summarySheet, "A1", fmt.Sprintf("%s 정산 요약", monthly.Month))
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.MergeCell(summarySheet, "A1", "E1")
	_ = f.SetCellStyle(summarySheet, "A1", "A1", titleStyle)

	headers := []string{"구분", "건수", "총매출", "수수료", "정산액"}
	writeHeaderRow(f, summarySheet, 2, headers)
	writeRow(f, summarySheet, 3, []interface{}{
		"전체", monthly.Total.Count, monthly.Total.Sales, monthly.Total.Fee, monthly.Total.Net,
	})

	row := writeGroupBlock(f, 5, "도급업체별", monthly.ByContractor)
	writeGroupBlock(f, row+1, "담당기사별", monthly.ByEngineer)

	_ = f.SetColWidth(summarySheet, "A", "A", 16)
	_ = f.SetColWidth(summarySheet, "B", "E", 14)
	return nil
}

// writeGroupBlock writes one labeled bucket table starting at row and
// returns the row after the table.
func writeGroupBlock(f *excelize.File, row int, label string, buckets []summary.GroupStats) int {
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), label)
	boldStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellStyle(summarySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), boldStyle)
	row++

	for _, bucket := range buckets {
		writeRow(f, summarySheet, row, []interface{}{
			bucket.Key, bucket.Count, bucket.Sales, bucket.Fee, bucket.Net,
		})
		row++
	}
	return row
}

func writeHeaderRow(f *excelize.File, sheet string, row int, headers []string) {
	style, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, style)
	}
}

func writeRow(f *excelize.File, sheet string, row int, cells []interface{}) {
	for i, v := range cells {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

// amountCell keeps undetermined fee/net cells empty instead of zero.
func amountCell(v *int64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
