package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amal-sh/Blockchain-supplychain/apperr"
	"github.com/amal-sh/Blockchain-supplychain/models"
)

// ServiceAccountRegistry is the owner-side surface of the contract.
type ServiceAccountRegistry interface {
	AssertDeployed(ctx context.Context) error
	Owner(ctx context.Context) (string, error)
	SetSensorServiceAccount(ctx context.Context, account string) (*models.TxReceipt, error)
	SensorServiceAccount(ctx context.Context) (string, error)
}

// ProvisionReport describes one provisioning run.
type ProvisionReport struct {
	Owner          string
	Signer         string
	ServiceAccount string
	Registered     string
	Receipt        *models.TxReceipt
	Match          bool
}

// ProvisionServiceAccount registers service as the sensor service account. signer must
// be the contract owner; anything else fails closed with an AuthorizationError before
// a transaction is sent.
func ProvisionServiceAccount(ctx context.Context, registry ServiceAccountRegistry, signer, service string, logger *slog.Logger) (*ProvisionReport, error) {
	if logger == nil {
		logger = slog.Default()
	}
	report := &ProvisionReport{Signer: signer, ServiceAccount: service}

	if err := registry.AssertDeployed(ctx); err != nil {
		return report, err
	}

	owner, err := registry.Owner(ctx)
	if err != nil {
		return report, fmt.Errorf("read contract owner: %w", err)
	}
	report.Owner = owner
	logger.Info("contract owner", "owner", owner, "signer", signer)
	if !strings.EqualFold(owner, signer) {
		return report, &apperr.AuthorizationError{Expected: "contract owner " + owner, Actual: signer}
	}

	logger.Info("setting service account", "service_account", service)
	receipt, err := registry.SetSensorServiceAccount(ctx, service)
	if err != nil {
		return report, fmt.Errorf("set sensor service account: %w", err)
	}
	report.Receipt = receipt
	logger.Info("service account registered", "tx_hash", receipt.TxHash, "block", receipt.BlockNumber, "gas_used", receipt.GasUsed)

	registered, err := registry.SensorServiceAccount(ctx)
	if err != nil {
		return report, fmt.Errorf("read sensor service account: %w", err)
	}
	report.Registered = registered
	report.Match = strings.EqualFold(registered, service)
	return report, nil
}
