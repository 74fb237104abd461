package utils

import (
	"strconv"

	"github.com/amal-sh/Blockchain-supplychain/models"
)

// Threshold limits. Temperature in °C, humidity and soil moisture in %, rain in mm.
const (
	TemperatureAlert  = 36.0
	TemperatureSevere = 38.0

	HumidityLow        = 40.0
	HumidityFungalRisk = 92.0

	SoilDry = 18.0

	RainCropRisk = 50.0
	RainFlood    = 150.0
)

// CheckThresholds returns the alerts raised by one reading, in the fixed order
// temperature, humidity, soil moisture, rain. An empty slice means no breach.
func CheckThresholds(temperature, humidity, soil, rain float64) []models.Alert {
	alerts := []models.Alert{}

	if temperature > TemperatureSevere {
		alerts = append(alerts, models.Alert{
			SensorType:  models.SensorTemperature,
			SensorValue: formatValue(temperature) + "°C (SEVERE)",
			Severity:    models.SeveritySevere,
		})
	} else if temperature > TemperatureAlert {
		alerts = append(alerts, models.Alert{
			SensorType:  models.SensorTemperature,
			SensorValue: formatValue(temperature) + "°C (ALERT)",
			Severity:    models.SeverityAlert,
		})
	}

	if humidity < HumidityLow {
		alerts = append(alerts, models.Alert{
			SensorType:  models.SensorHumidity,
			SensorValue: formatValue(humidity) + "% (LOW - Dry conditions)",
			Severity:    models.SeverityAlert,
		})
	} else if humidity > HumidityFungalRisk {
		alerts = append(alerts, models.Alert{
			SensorType:  models.SensorHumidity,
			SensorValue: formatValue(humidity) + "% (HIGH - Fungal risk)",
			Severity:    models.SeverityAlert,
		})
	}

	if soil < SoilDry {
		alerts = append(alerts, models.Alert{
			SensorType:  models.SensorSoilMoisture,
			SensorValue: formatValue(soil) + "% (DRY - Irrigation needed)",
			Severity:    models.SeverityAlert,
		})
	}

	if rain > RainFlood {
		alerts = append(alerts, models.Alert{
			SensorType:  models.SensorRain,
			SensorValue: formatValue(rain) + "mm (FLOOD RISK)",
			Severity:    models.SeveritySevere,
		})
	} else if rain > RainCropRisk {
		alerts = append(alerts, models.Alert{
			SensorType:  models.SensorRain,
			SensorValue: formatValue(rain) + "mm (Crop risk - excessive rain)",
			Severity:    models.SeverityAlert,
		})
	}

	return alerts
}

// CheckReading is CheckThresholds over a stored reading.
func CheckReading(r models.SensorReading) []models.Alert {
	return CheckThresholds(r.Temperature, r.Humidity, r.Soil, r.Rain)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
