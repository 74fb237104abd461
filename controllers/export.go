package controllers

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/amal-sh/Blockchain-supplychain/models"
	"github.com/amal-sh/Blockchain-supplychain/store"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Sensor Data"

var exportHeader = []string{"timestamp", "temperature", "humidity", "soil", "rain"}

type ExportController struct {
	readings store.ReadingStore
	logger   *slog.Logger
}

func NewExportController(readings store.ReadingStore, logger *slog.Logger) *ExportController {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportController{readings: readings, logger: logger}
}

// DownloadReadings sends every reading of a farm as CSV (default) or XLSX, newest first.
func (ctl *ExportController) DownloadReadings(c *gin.Context) {
	farmID := c.Query("farmId")
	if farmID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Farm ID is required"})
		return
	}
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "format must be csv or xlsx"})
		return
	}

	records, err := ctl.readings.FindReadings(c.Request.Context(), farmID, 0)
	if err != nil {
		ctl.logger.Error("failed to export sensor data", "farm_id", farmID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch sensor data"})
		return
	}

	if format == "xlsx" {
		ctl.writeXLSX(c, farmID, records)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=sensor_data_%s.csv", farmID))
	if err := writeCSV(c.Writer, records); err != nil {
		ctl.logger.Error("failed to write csv export", "farm_id", farmID, "error", err)
	}
}

func writeCSV(w io.Writer, records []models.SensorReading) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return err
	}
	for _, record := range records {
		if err := writer.Write([]string{
			record.Timestamp.Format("2006-01-02 15:04:05"),
			formatFloat(record.Temperature),
			formatFloat(record.Humidity),
			formatFloat(record.Soil),
			formatFloat(record.Rain),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func (ctl *ExportController) writeXLSX(c *gin.Context, farmID string, records []models.SensorReading) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", exportSheet)

	for i, h := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, h)
	}
	for i, record := range records {
		row := i + 2
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("A%d", row), record.Timestamp.Format("2006-01-02 15:04:05"))
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("B%d", row), record.Temperature)
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("C%d", row), record.Humidity)
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("D%d", row), record.Soil)
		_ = f.SetCellValue(exportSheet, fmt.Sprintf("E%d", row), record.Rain)
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=sensor_data_%s.xlsx", farmID))
	if err := f.Write(c.Writer); err != nil {
		ctl.logger.Error("failed to write xlsx export", "farm_id", farmID, "error", err)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
