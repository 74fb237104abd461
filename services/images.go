package services

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/amal-sh/Blockchain-supplychain/apperr"
	"github.com/amal-sh/Blockchain-supplychain/metrics"
	"github.com/amal-sh/Blockchain-supplychain/models"
	"github.com/amal-sh/Blockchain-supplychain/store"
	"github.com/amal-sh/Blockchain-supplychain/utils"
)

// UploadsPath is the URL prefix under which stored images are served.
const UploadsPath = "/uploads/"

// ImageIntake verifies uploaded images against their reported hash and stores them
// under their content hash.
type ImageIntake struct {
	images store.ImageStore
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

func NewImageIntake(images store.ImageStore, dir string, logger *slog.Logger) *ImageIntake {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageIntake{
		images: images,
		dir:    dir,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// FileName is the content-addressed name an image with the given hash is stored under.
func FileName(hash string) string { return hash + ".jpg" }

// Upload stores data and records its metadata. reportedHash is empty when the device
// sent none, which leaves IsMatch nil.
func (s *ImageIntake) Upload(ctx context.Context, data []byte, reportedHash string) (*models.ImageRecord, error) {
	if len(data) == 0 {
		return nil, apperr.Validation("No image payload found")
	}

	calculated := utils.SHA256Hex(data)
	var isMatch *bool
	if reportedHash != "" {
		match := calculated == reportedHash
		isMatch = &match
	}

	name := FileName(calculated)
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		metrics.ObserveImage(metrics.ResultError, 0)
		return nil, apperr.Storage("create upload directory", err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		metrics.ObserveImage(metrics.ResultError, 0)
		return nil, apperr.Storage("write image file", err)
	}

	record := &models.ImageRecord{
		ReportedHash:   reportedHash,
		CalculatedHash: calculated,
		IsMatch:        isMatch,
		SizeBytes:      int64(len(data)),
		ImagePath:      UploadsPath + name,
		Timestamp:      s.now(),
	}
	if record.ReportedHash == "" {
		record.ReportedHash = models.NoReportedHash
	}
	if _, err := s.images.InsertImage(ctx, record); err != nil {
		s.logger.Error("failed to store image metadata", "hash", calculated, "error", err)
		metrics.ObserveImage(metrics.ResultError, 0)
		return nil, apperr.Storage("insert image metadata", err)
	}

	metrics.ObserveImage(verdict(isMatch), record.SizeBytes)
	s.logger.Info("image received", "size_bytes", record.SizeBytes, "path", path, "verdict", verdict(isMatch))
	return record, nil
}

// Recent lists the newest image records.
func (s *ImageIntake) Recent(ctx context.Context) ([]models.ImageRecord, error) {
	images, err := s.images.FindImages(ctx, store.ImageListLimit)
	if err != nil {
		s.logger.Error("failed to fetch farm images", "error", err)
		return nil, apperr.Storage("find images", err)
	}
	if images == nil {
		images = []models.ImageRecord{}
	}
	return images, nil
}

func verdict(isMatch *bool) string {
	switch {
	case isMatch == nil:
		return "unverified"
	case *isMatch:
		return "match"
	default:
		return "mismatch"
	}
}
