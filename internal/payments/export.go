package payments

import (
	"fmt"

	"agrolink-backend/internal/clock"
	"agrolink-backend/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// GET /api/payments/export — per-farmer reconciliation as xlsx.
func ExportHandler(clk clock.Clock) fiber.Handler {
	return func(c *fiber.Ctx) error {
		balances, err := Balances(database.DB)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute balances")
		}

		f := excelize.NewFile()
		defer f.Close()

		sheet := "Reconciliation"
		f.SetSheetName("Sheet1", sheet)

		headers := []string{"Farmer ID", "Farmer", "Total Owed", "Total Paid", "Outstanding", "Status"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		for i, b := range balances {
			row := i + 2
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), b.FarmerID)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), b.FarmerName)
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), b.TotalOwed)
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), b.TotalPaid)
			f.SetCellValue(sheet, fmt.Sprintf("E%d", row), b.Outstanding)
			f.SetCellValue(sheet, fmt.Sprintf("F%d", row), string(b.Status))
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build report")
		}

		filename := fmt.Sprintf("payment-reconciliation-%s.xlsx", clk.Now().Format("2006-01-02"))
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
		return c.Send(buf.Bytes())
	}
}
