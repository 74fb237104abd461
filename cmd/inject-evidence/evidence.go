package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/amal-sh/Blockchain-supplychain/models"
	"github.com/amal-sh/Blockchain-supplychain/store"

	"gopkg.in/yaml.v3"
)

// Fixture is the evidence pair written by one run.
type Fixture struct {
	FarmName       string         `yaml:"farm_name"`
	FallbackFarmID string         `yaml:"fallback_farm_id"`
	Reading        ReadingFixture `yaml:"reading"`
	Image          ImageFixture   `yaml:"image"`
}

type ReadingFixture struct {
	Temperature float64 `yaml:"temperature"`
	Humidity    float64 `yaml:"humidity"`
	Soil        float64 `yaml:"soil"`
	Rain        float64 `yaml:"rain"`
}

type ImageFixture struct {
	ReportedHash   string `yaml:"reported_hash"`
	CalculatedHash string `yaml:"calculated_hash"`
	IsMatch        *bool  `yaml:"is_match"`
	SizeBytes      int64  `yaml:"size_bytes"`
	ImagePath      string `yaml:"image_path"`
}

// DefaultFixture is a dry-field reading paired with a photo of dry land.
func DefaultFixture() Fixture {
	match := true
	return Fixture{
		FarmName:       "farmer1",
		FallbackFarmID: "68f1f0ad8b1f5c98334fb5a5",
		Reading:        ReadingFixture{Temperature: 25.5, Humidity: 35, Soil: 20, Rain: 0},
		Image: ImageFixture{
			ReportedHash:   "fakehash123",
			CalculatedHash: "fakehash123",
			IsMatch:        &match,
			SizeBytes:      1024,
			ImagePath:      "https://images.unsplash.com/photo-1592982537447-7440770cbfc9?q=80&w=500&auto=format&fit=crop",
		},
	}
}

// LoadFixture overlays the YAML file at path onto DefaultFixture.
func LoadFixture(path string) (Fixture, error) {
	fx := DefaultFixture()
	if path == "" {
		return fx, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fx, err
	}
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return fx, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return fx, nil
}

type Evidence interface {
	store.FarmStore
	store.ReadingStore
	store.ImageStore
}

// Result identifies what was written.
type Result struct {
	FarmID     string
	FarmFound  bool
	ReadingID  string
	ImageID    string
	RecordedAt time.Time
}

// Inject writes one reading and one image record sharing the timestamp now.
func Inject(ctx context.Context, db Evidence, fx Fixture, now time.Time) (Result, error) {
	res := Result{FarmID: fx.FallbackFarmID, RecordedAt: now}

	farm, err := db.FindFarmByName(ctx, fx.FarmName)
	switch {
	case err == nil:
		res.FarmID = farm.ID
		res.FarmFound = true
	case !errors.Is(err, store.ErrNotFound):
		return res, fmt.Errorf("find farm %q: %w", fx.FarmName, err)
	}
	if res.FarmID == "" {
		return res, fmt.Errorf("farm %q not found and no fallback farm id given", fx.FarmName)
	}

	reading := &models.SensorReading{
		FarmID:      res.FarmID,
		Temperature: fx.Reading.Temperature,
		Humidity:    fx.Reading.Humidity,
		Soil:        fx.Reading.Soil,
		Rain:        fx.Reading.Rain,
		Timestamp:   now,
	}
	if res.ReadingID, err = db.InsertReading(ctx, reading); err != nil {
		return res, fmt.Errorf("insert reading: %w", err)
	}

	image := &models.ImageRecord{
		ReportedHash:   fx.Image.ReportedHash,
		CalculatedHash: fx.Image.CalculatedHash,
		IsMatch:        fx.Image.IsMatch,
		SizeBytes:      fx.Image.SizeBytes,
		ImagePath:      fx.Image.ImagePath,
		Timestamp:      now,
	}
	if res.ImageID, err = db.InsertImage(ctx, image); err != nil {
		return res, fmt.Errorf("insert image: %w", err)
	}
	return res, nil
}
