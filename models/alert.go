package models

type SensorType string

const (
	SensorTemperature  SensorType = "Temperature"
	SensorHumidity     SensorType = "Humidity"
	SensorSoilMoisture SensorType = "Soil Moisture"
	SensorRain         SensorType = "Rain"
)

type Severity string

const (
	SeverityAlert  Severity = "alert"
	SeveritySevere Severity = "severe"
)

// Alert is a threshold breach derived from a reading. It is never stored on its own.
type Alert struct {
	SensorType  SensorType `json:"sensorType"`
	SensorValue string     `json:"sensorValue"`
	Severity    Severity   `json:"severity"`
}
