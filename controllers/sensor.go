package controllers

import (
	"net/http"
	"time"

	"github.com/amal-sh/Blockchain-supplychain/apperr"
	"github.com/amal-sh/Blockchain-supplychain/metrics"
	"github.com/amal-sh/Blockchain-supplychain/models"
	"github.com/amal-sh/Blockchain-supplychain/services"

	"github.com/gin-gonic/gin"
)

const TransportHTTP = "http"

type SensorController struct {
	ingestion *services.SensorIngestion
}

func NewSensorController(ingestion *services.SensorIngestion) *SensorController {
	return &SensorController{ingestion: ingestion}
}

// ReceiveData processes incoming sensor data.
func (ctl *SensorController) ReceiveData(c *gin.Context) {
	start := time.Now()

	var req models.SensorReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.ObserveIngest(TransportHTTP, metrics.ResultInvalid, time.Since(start))
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid data"})
		return
	}

	resp, err := ctl.ingestion.Ingest(c.Request.Context(), req)
	if err != nil {
		result := metrics.ResultError
		if apperr.IsValidation(err) {
			result = metrics.ResultInvalid
		}
		metrics.ObserveIngest(TransportHTTP, result, time.Since(start))
		respondError(c, err)
		return
	}

	metrics.ObserveIngest(TransportHTTP, metrics.ResultSuccess, time.Since(start))
	c.JSON(http.StatusOK, resp)
}

// GetHistory returns the farm's recent readings, oldest first.
func (ctl *SensorController) GetHistory(c *gin.Context) {
	records, err := ctl.ingestion.History(c.Request.Context(), c.Query("farmId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}
