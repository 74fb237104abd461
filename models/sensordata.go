package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// SensorReading is one persisted set of field measurements for a farm.
type SensorReading struct {
	ID          string    `json:"_id" gorm:"primaryKey;size:36"`
	FarmID      string    `json:"farmId" gorm:"index;not null"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Soil        float64   `json:"soil"`
	Rain        float64   `json:"rain"`
	Timestamp   time.Time `json:"timestamp" gorm:"index"`
}

func (SensorReading) TableName() string { return "sensor_data" }

// SensorReadingRequest is the body accepted by the ingestion endpoint and the MQTT topic.
// Pointers distinguish an absent field from a zero reading.
type SensorReadingRequest struct {
	Temperature *Measurement `json:"temperature"`
	Humidity    *Measurement `json:"humidity"`
	Soil        *Measurement `json:"soil"`
	Rain        *Measurement `json:"rain"`
	FarmID      string       `json:"farmId"`
}

// Measurement accepts a JSON number or a numeric string ("36.5"). NaN and infinities are rejected.
type Measurement float64

func (m *Measurement) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("measurement %q is not a finite number", s)
		}
		*m = Measurement(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("measurement %s is not a finite number", data)
	}
	*m = Measurement(v)
	return nil
}

func (m *Measurement) Float() float64 {
	if m == nil {
		return 0
	}
	return float64(*m)
}

// IngestResponse is returned by POST /api/sensor-data.
type IngestResponse struct {
	Message           string        `json:"message"`
	ID                string        `json:"id"`
	Alerts            []Alert       `json:"alerts,omitempty"`
	BlockchainRecords []ClaimRecord `json:"blockchainRecords,omitempty"`
	BlockchainWarning string        `json:"blockchainWarning,omitempty"`
}
