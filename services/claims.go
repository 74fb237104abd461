package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/amal-sh/Blockchain-supplychain/apperr"
	"github.com/amal-sh/Blockchain-supplychain/metrics"
	"github.com/amal-sh/Blockchain-supplychain/models"
)

// RoleFarm is the on-chain Roles.Role value for a registered farm.
const RoleFarm uint8 = 2

// DefaultClaimTimeout bounds one submission, receipt wait included.
const DefaultClaimTimeout = 2 * time.Minute

// ClaimFiler is the slice of the contract the claim submitter needs.
type ClaimFiler interface {
	FileInsuranceClaimFor(ctx context.Context, farm, sensorType, sensorValue string) (string, error)
	Role(ctx context.Context, account string) (uint8, error)
}

// ClaimSubmitter files insurance claims with the service identity on behalf of farms.
type ClaimSubmitter struct {
	chain   ClaimFiler
	timeout time.Duration
	logger  *slog.Logger
}

func NewClaimSubmitter(chain ClaimFiler, timeout time.Duration, logger *slog.Logger) *ClaimSubmitter {
	if timeout <= 0 {
		timeout = DefaultClaimTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ClaimSubmitter{chain: chain, timeout: timeout, logger: logger}
}

// FarmRegistered reads the farm's role from the contract's access-control registry.
func (s *ClaimSubmitter) FarmRegistered(ctx context.Context, wallet string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	role, err := s.chain.Role(ctx, wallet)
	if err != nil {
		return false, err
	}
	return role == RoleFarm, nil
}

// Submit files one claim and waits for it to be mined. The submission is detached from
// ctx cancellation so a disconnecting client does not abort it; only the timeout does.
func (s *ClaimSubmitter) Submit(ctx context.Context, wallet string, alert models.Alert) (string, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	s.logger.Info("filing insurance claim", "farm_wallet", wallet, "sensor_type", alert.SensorType, "sensor_value", alert.SensorValue)
	start := time.Now()
	txHash, err := s.chain.FileInsuranceClaimFor(ctx, wallet, string(alert.SensorType), alert.SensorValue)
	if err != nil {
		metrics.ObserveClaim(metrics.ResultError, time.Since(start))
		return "", &apperr.SubmissionError{SensorType: string(alert.SensorType), Err: err}
	}
	metrics.ObserveClaim(metrics.ResultSuccess, time.Since(start))
	s.logger.Info("insurance claim mined", "farm_wallet", wallet, "sensor_type", alert.SensorType, "tx_hash", txHash)
	return txHash, nil
}

// SubmitAll files one claim per alert, in order. A failed alert is recorded and the
// loop moves on.
func (s *ClaimSubmitter) SubmitAll(ctx context.Context, farmID, wallet string, alerts []models.Alert) []models.ClaimRecord {
	records := make([]models.ClaimRecord, 0, len(alerts))
	for _, alert := range alerts {
		record := models.ClaimRecord{Alert: alert}
		txHash, err := s.Submit(ctx, wallet, alert)
		if err != nil {
			s.logger.Error("blockchain write failed",
				"farm_id", farmID, "farm_wallet", wallet, "sensor_type", alert.SensorType, "error", err)
			record.Blockchain = models.BlockchainResult{Success: false, Error: err.Error()}
		} else {
			record.Blockchain = models.BlockchainResult{Success: true, TxHash: txHash}
		}
		records = append(records, record)
	}
	return records
}
