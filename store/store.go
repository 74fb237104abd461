// Package store is the persistence port. Handlers and services depend on the narrow
// interfaces below; adapters exist for MongoDB, GORM (Postgres or SQLite) and memory.
package store

import (
	"context"
	"errors"

	"github.com/amal-sh/Blockchain-supplychain/models"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

// Default result caps used by the HTTP layer.
const (
	ReadingHistoryLimit = 100
	ImageListLimit      = 50
)

type ReadingStore interface {
	InsertReading(ctx context.Context, r *models.SensorReading) (string, error)
	// FindReadings returns a farm's readings newest first, at most limit (0 means no cap).
	FindReadings(ctx context.Context, farmID string, limit int64) ([]models.SensorReading, error)
}

type FarmStore interface {
	InsertFarm(ctx context.Context, f *models.Farm) (string, error)
	FindFarm(ctx context.Context, id string) (*models.Farm, error)
	FindFarmByName(ctx context.Context, name string) (*models.Farm, error)
}

type ImageStore interface {
	InsertImage(ctx context.Context, img *models.ImageRecord) (string, error)
	// FindImages returns image metadata newest first, at most limit (0 means no cap).
	FindImages(ctx context.Context, limit int64) ([]models.ImageRecord, error)
}

type UserStore interface {
	InsertUser(ctx context.Context, u *models.User) (string, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUserRole(ctx context.Context, email, role string) error
}

// Store is the full capability set a backend provides.
type Store interface {
	ReadingStore
	FarmStore
	ImageStore
	UserStore
	Close(ctx context.Context) error
}
