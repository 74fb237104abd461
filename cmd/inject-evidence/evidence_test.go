package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amal-sh/Blockchain-supplychain/models"
	"github.com/amal-sh/Blockchain-supplychain/store"
)

func TestInjectUsesNamedFarm(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	farmID, _ := mem.InsertFarm(ctx, &models.Farm{Name: "farmer1", WalletAddress: "0x1"})
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	res, err := Inject(ctx, mem, DefaultFixture(), now)
	if err != nil {
		t.Fatalf("inject: %v", err)
	}
	if !res.FarmFound || res.FarmID != farmID {
		t.Fatalf("unexpected result: %+v", res)
	}

	readings, _ := mem.FindReadings(ctx, farmID, 0)
	images, _ := mem.FindImages(ctx, 0)
	if len(readings) != 1 || len(images) != 1 {
		t.Fatalf("expected one of each, got %d readings %d images", len(readings), len(images))
	}
	if !readings[0].Timestamp.Equal(now) || !images[0].Timestamp.Equal(now) {
		t.Fatalf("timestamps differ: %v %v", readings[0].Timestamp, images[0].Timestamp)
	}
	if readings[0].Soil != 20 || images[0].IsMatch == nil || !*images[0].IsMatch {
		t.Fatalf("unexpected evidence: %+v %+v", readings[0], images[0])
	}
}

func TestInjectFallsBackToFarmID(t *testing.T) {
	mem := store.NewMemoryStore()
	res, err := Inject(context.Background(), mem, DefaultFixture(), time.Now())
	if err != nil {
		t.Fatalf("inject: %v", err)
	}
	if res.FarmFound || res.FarmID != "68f1f0ad8b1f5c98334fb5a5" {
		t.Fatalf("unexpected result: %+v", res)
	}

	fx := DefaultFixture()
	fx.FallbackFarmID = ""
	if _, err := Inject(context.Background(), mem, fx, time.Now()); err == nil {
		t.Fatal("expected error without farm or fallback id")
	}
}

func TestLoadFixtureOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evidence.yaml")
	body := "farm_name: north-field\nreading:\n  temperature: 39\n  humidity: 35\n  soil: 12\n  rain: 0\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	fx, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if fx.FarmName != "north-field" || fx.Reading.Temperature != 39 || fx.Reading.Soil != 12 {
		t.Fatalf("overrides not applied: %+v", fx)
	}
	if fx.Image.CalculatedHash != "fakehash123" || fx.FallbackFarmID == "" {
		t.Fatalf("defaults lost: %+v", fx)
	}
}
