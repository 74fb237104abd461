// Command inject-evidence seeds a sensor reading and an image record with one shared
// timestamp, so a dashboard can show them side by side.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/amal-sh/Blockchain-supplychain/config"
	"github.com/amal-sh/Blockchain-supplychain/store"
)

func main() {
	fixturePath := flag.String("fixture", "", "YAML fixture overriding the default evidence")
	farmID := flag.String("farm-id", "", "farm id used when the named farm does not exist")
	farmName := flag.String("farm-name", "", "farm to attach the evidence to (default farmer1)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	fx, err := LoadFixture(*fixturePath)
	if err != nil {
		logger.Error("failed to load fixture", "error", err)
		os.Exit(1)
	}
	if *farmID != "" {
		fx.FallbackFarmID = *farmID
	}
	if *farmName != "" {
		fx.FarmName = *farmName
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer db.Close(context.Background())

	res, err := Inject(ctx, db, fx, time.Now().UTC())
	if err != nil {
		logger.Error("failed to inject evidence", "error", err)
		os.Exit(1)
	}
	if !res.FarmFound {
		logger.Warn("farm not found, using fallback id", "farm_name", fx.FarmName, "farm_id", res.FarmID)
	}
	logger.Info("evidence injected",
		"farm_id", res.FarmID,
		"reading_id", res.ReadingID,
		"image_id", res.ImageID,
		"timestamp", res.RecordedAt.Format(time.RFC3339))
}
