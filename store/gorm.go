package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/amal-sh/Blockchain-supplychain/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormStore persists to a relational database through GORM.
type GormStore struct {
	db *gorm.DB
}

// OpenPostgres connects to PostgreSQL using a DATABASE_URL style DSN.
func OpenPostgres(dsn string) (*GormStore, error) {
	return openGorm(postgres.Open(dsn))
}

// OpenSQLite opens (or creates) a SQLite database file. Use ":memory:" for a throwaway one.
func OpenSQLite(path string) (*GormStore, error) {
	return openGorm(sqlite.Open(path))
}

func openGorm(dialector gorm.Dialector) (*GormStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := MigrateModels(db); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

// MigrateModels runs the database migrations
func MigrateModels(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Farm{}, &models.SensorReading{}, &models.ImageRecord{}); err != nil {
		return fmt.Errorf("migrate models: %w", err)
	}
	return nil
}

func (s *GormStore) InsertReading(ctx context.Context, r *models.SensorReading) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return "", err
	}
	return r.ID, nil
}

func (s *GormStore) FindReadings(ctx context.Context, farmID string, limit int64) ([]models.SensorReading, error) {
	var records []models.SensorReading
	query := s.db.WithContext(ctx).Where("farm_id = ?", farmID).Order("timestamp desc")
	if limit > 0 {
		query = query.Limit(int(limit))
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *GormStore) InsertFarm(ctx context.Context, f *models.Farm) (string, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(f).Error; err != nil {
		return "", translate(err)
	}
	return f.ID, nil
}

func (s *GormStore) FindFarm(ctx context.Context, id string) (*models.Farm, error) {
	var farm models.Farm
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&farm).Error; err != nil {
		return nil, translate(err)
	}
	return &farm, nil
}

func (s *GormStore) FindFarmByName(ctx context.Context, name string) (*models.Farm, error) {
	var farm models.Farm
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&farm).Error; err != nil {
		return nil, translate(err)
	}
	return &farm, nil
}

func (s *GormStore) InsertImage(ctx context.Context, img *models.ImageRecord) (string, error) {
	if img.ID == "" {
		img.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(img).Error; err != nil {
		return "", err
	}
	return img.ID, nil
}

func (s *GormStore) FindImages(ctx context.Context, limit int64) ([]models.ImageRecord, error) {
	var records []models.ImageRecord
	query := s.db.WithContext(ctx).Order("timestamp desc")
	if limit > 0 {
		query = query.Limit(int(limit))
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *GormStore) InsertUser(ctx context.Context, u *models.User) (string, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", u.Username, u.Email).
		Count(&existing).Error; err != nil {
		return "", err
	}
	if existing > 0 {
		return "", ErrDuplicate
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return "", translate(err)
	}
	return u.ID, nil
}

func (s *GormStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) UpdateUserRole(ctx context.Context, email, role string) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
