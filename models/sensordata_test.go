package models

import (
	"encoding/json"
	"testing"
)

func TestMeasurementUnmarshal(t *testing.T) {
	valid := map[string]float64{
		`36.5`:    36.5,
		`"36.5"`:  36.5,
		`0`:       0,
		`"-2"`:    -2,
		` "1e2" `: 100,
	}
	for in, want := range valid {
		var m Measurement
		if err := json.Unmarshal([]byte(in), &m); err != nil {
			t.Fatalf("unmarshal %s: %v", in, err)
		}
		if m.Float() != want {
			t.Fatalf("unmarshal %s = %v, want %v", in, m.Float(), want)
		}
	}

	for _, in := range []string{`"NaN"`, `"nan"`, `"Inf"`, `"-Inf"`, `"Infinity"`, `"+infinity"`, `"hot"`, `""`, `true`} {
		var m Measurement
		if err := json.Unmarshal([]byte(in), &m); err == nil {
			t.Fatalf("expected %s to be rejected, got %v", in, m.Float())
		}
	}
}

func TestSensorReadingRequestRejectsNonFinite(t *testing.T) {
	var req SensorReadingRequest
	body := `{"temperature":"Inf","humidity":50,"soil":30,"rain":0,"farmId":"f1"}`
	if err := json.Unmarshal([]byte(body), &req); err == nil {
		t.Fatal("expected non-finite temperature to be rejected")
	}
}
