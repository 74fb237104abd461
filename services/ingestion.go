// Package services holds the request-scoped flows behind the HTTP and MQTT transports.
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amal-sh/Blockchain-supplychain/apperr"
	"github.com/amal-sh/Blockchain-supplychain/metrics"
	"github.com/amal-sh/Blockchain-supplychain/models"
	"github.com/amal-sh/Blockchain-supplychain/store"
	"github.com/amal-sh/Blockchain-supplychain/utils"
)

const (
	MessageReceived = "Data received successfully"

	WarningNoWallet      = "Farm wallet address not found - could not write to blockchain"
	WarningNotRegistered = "Farm is not registered on-chain - could not write to blockchain"
	WarningNoChain       = "Blockchain client not configured - could not write to blockchain"
)

// Notifier receives every persisted reading together with the alerts it raised.
type Notifier interface {
	NotifyReading(reading models.SensorReading, alerts []models.Alert)
}

// SensorIngestion runs validate → persist → evaluate → resolve farm → submit claims.
type SensorIngestion struct {
	readings   store.ReadingStore
	farms      store.FarmStore
	claims     *ClaimSubmitter
	verifyRole bool
	notifier   Notifier
	logger     *slog.Logger
	now        func() time.Time
}

type IngestionOption func(*SensorIngestion)

// WithClaims enables the on-chain leg. verifyRole adds the roles() pre-check.
func WithClaims(claims *ClaimSubmitter, verifyRole bool) IngestionOption {
	return func(s *SensorIngestion) {
		s.claims = claims
		s.verifyRole = verifyRole
	}
}

func WithNotifier(n Notifier) IngestionOption {
	return func(s *SensorIngestion) { s.notifier = n }
}

func WithClock(now func() time.Time) IngestionOption {
	return func(s *SensorIngestion) { s.now = now }
}

func NewSensorIngestion(readings store.ReadingStore, farms store.FarmStore, logger *slog.Logger, opts ...IngestionOption) *SensorIngestion {
	if logger == nil {
		logger = slog.Default()
	}
	s := &SensorIngestion{
		readings: readings,
		farms:    farms,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateReading turns a request into an unsaved reading.
func ValidateReading(req models.SensorReadingRequest) (models.SensorReading, error) {
	if req.Temperature == nil || req.Humidity == nil || req.Soil == nil || req.Rain == nil {
		return models.SensorReading{}, apperr.Validation("Missing sensor data fields")
	}
	if req.FarmID == "" {
		return models.SensorReading{}, apperr.Validation("farmId is required")
	}
	return models.SensorReading{
		FarmID:      req.FarmID,
		Temperature: req.Temperature.Float(),
		Humidity:    req.Humidity.Float(),
		Soil:        req.Soil.Float(),
		Rain:        req.Rain.Float(),
	}, nil
}

// Ingest saves the reading before anything else; later failures only shape the response.
func (s *SensorIngestion) Ingest(ctx context.Context, req models.SensorReadingRequest) (*models.IngestResponse, error) {
	reading, err := ValidateReading(req)
	if err != nil {
		return nil, err
	}
	reading.Timestamp = s.now()

	id, err := s.readings.InsertReading(ctx, &reading)
	if err != nil {
		s.logger.Error("failed to save sensor data", "farm_id", reading.FarmID, "error", err)
		return nil, apperr.Storage("insert sensor reading", err)
	}
	reading.ID = id
	s.logger.Info("sensor data saved", "id", id, "farm_id", reading.FarmID)

	resp := &models.IngestResponse{Message: MessageReceived, ID: id}

	alerts := utils.CheckReading(reading)
	s.notify(reading, alerts)
	if len(alerts) == 0 {
		return resp, nil
	}
	resp.Alerts = alerts
	for _, a := range alerts {
		metrics.IncAlert(string(a.SensorType), string(a.Severity))
	}
	s.logger.Warn("threshold breach detected", "farm_id", reading.FarmID, "alerts", len(alerts))

	if s.claims == nil {
		resp.BlockchainWarning = WarningNoChain
		metrics.ObserveClaim(metrics.ResultSkipped, 0)
		return resp, nil
	}

	farm, err := s.farms.FindFarm(ctx, reading.FarmID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Error("farm lookup failed", "farm_id", reading.FarmID, "error", err)
	}
	if farm == nil || farm.WalletAddress == "" {
		s.logger.Error("farm wallet address not found", "farm_id", reading.FarmID)
		resp.BlockchainWarning = WarningNoWallet
		metrics.ObserveClaim(metrics.ResultSkipped, 0)
		return resp, nil
	}

	if s.verifyRole {
		registered, err := s.claims.FarmRegistered(ctx, farm.WalletAddress)
		switch {
		case err != nil:
			s.logger.Error("failed to verify farm registration, submitting anyway",
				"farm_id", reading.FarmID, "farm_wallet", farm.WalletAddress, "error", err)
		case !registered:
			s.logger.Error("farm is not registered on-chain", "farm_id", reading.FarmID, "farm_wallet", farm.WalletAddress)
			resp.BlockchainWarning = WarningNotRegistered
			metrics.ObserveClaim(metrics.ResultSkipped, 0)
			return resp, nil
		}
	}

	resp.BlockchainRecords = s.claims.SubmitAll(ctx, reading.FarmID, farm.WalletAddress, alerts)
	return resp, nil
}

// History returns up to ReadingHistoryLimit of the farm's most recent readings,
// oldest first.
func (s *SensorIngestion) History(ctx context.Context, farmID string) ([]models.SensorReading, error) {
	if farmID == "" {
		return nil, apperr.Validation("Farm ID is required")
	}
	records, err := s.readings.FindReadings(ctx, farmID, store.ReadingHistoryLimit)
	if err != nil {
		s.logger.Error("failed to fetch sensor data", "farm_id", farmID, "error", err)
		return nil, apperr.Storage("find sensor readings", err)
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	if records == nil {
		records = []models.SensorReading{}
	}
	return records, nil
}

func (s *SensorIngestion) notify(reading models.SensorReading, alerts []models.Alert) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyReading(reading, alerts)
}
