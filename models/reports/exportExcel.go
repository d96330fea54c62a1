package reports

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// BuildMonthlySummaryWorkbook renders the monthly summary plus the per-branch
// attendance table into a spreadsheet ready to stream as an attachment.
func BuildMonthlySummaryWorkbook(ctx context.Context, monthKey string) (*excelize.File, error) {
	summary, err := GetMonthlySummary(ctx, monthKey)
	if err != nil {
		return nil, err
	}
	branches, err := GetBranchAttendanceSummary(ctx, monthKey)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Summary"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return nil, err
	}
	moneyFormat := "#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFormat})
	if err != nil {
		return nil, err
	}

	f.SetCellValue(sheet, "A1", "Monthly Summary")
	f.SetCellValue(sheet, "B1", summary.Month)
	f.SetCellStyle(sheet, "A1", "B1", headerStyle)

	rows := []struct {
		label string
		value interface{}
		money bool
	}{
		{"Revenue", summary.Revenue.InexactFloat64(), true},
		{"Expense", summary.Expense.InexactFloat64(), true},
		{"Net", summary.Net.InexactFloat64(), true},
		{"Payments", summary.PaymentCount, false},
		{"New members", summary.NewMemberCount, false},
		{"Active members", summary.ActiveMemberCount, false},
		{"Attendance rate %", summary.AttendanceRate.InexactFloat64(), false},
	}
	for i, row := range rows {
		cellA := "A" + fmt.Sprint(i+3)
		cellB := "B" + fmt.Sprint(i+3)
		f.SetCellValue(sheet, cellA, row.label)
		f.SetCellValue(sheet, cellB, row.value)
		if row.money {
			f.SetCellStyle(sheet, cellB, cellB, moneyStyle)
		}
	}

	branchRow := len(rows) + 5
	f.SetCellValue(sheet, "A"+fmt.Sprint(branchRow), "Branch")
	f.SetCellValue(sheet, "B"+fmt.Sprint(branchRow), "Present")
	f.SetCellValue(sheet, "C"+fmt.Sprint(branchRow), "Total")
	f.SetCellValue(sheet, "D"+fmt.Sprint(branchRow), "Rate %")
	f.SetCellStyle(sheet, "A"+fmt.Sprint(branchRow), "D"+fmt.Sprint(branchRow), headerStyle)
	for i, branch := range branches {
		row := fmt.Sprint(branchRow + 1 + i)
		f.SetCellValue(sheet, "A"+row, branch.BranchName)
		f.SetCellValue(sheet, "B"+row, branch.Present)
		f.SetCellValue(sheet, "C"+row, branch.Total)
		f.SetCellValue(sheet, "D"+row, branch.Rate.InexactFloat64())
	}

	f.SetColWidth(sheet, "A", "A", 22)
	f.SetColWidth(sheet, "B", "D", 14)
	return f, nil
}
