// Command setup-service-account registers the sensor service wallet on the SupplyChain
// contract. It must be run with the contract owner's key.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amal-sh/Blockchain-supplychain/apperr"
	"github.com/amal-sh/Blockchain-supplychain/chain"
	"github.com/amal-sh/Blockchain-supplychain/config"
	"github.com/amal-sh/Blockchain-supplychain/services"
)

const runTimeout = 5 * time.Minute

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.RequireOwner(); err != nil {
		logger.Error("cannot provision service account", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		var authErr *apperr.AuthorizationError
		if errors.As(err, &authErr) {
			logger.Error("OWNER_PRIVATE_KEY does not belong to the contract owner", "error", err)
		} else {
			logger.Error("provisioning failed", "error", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	service, err := chain.AddressFromKey(cfg.SensorServicePrivateKey)
	if err != nil {
		return err
	}
	logger.Info("sensor service account", "address", service)

	client, err := chain.Dial(ctx, cfg.RPCURL, cfg.ContractAddress, cfg.OwnerPrivateKey)
	if err != nil {
		return err
	}
	defer client.Close()

	report, err := services.ProvisionServiceAccount(ctx, client, client.SignerAddress(), service, logger)
	if err != nil {
		return err
	}
	if !report.Match {
		return errors.New("service account readback mismatch: contract holds " + report.Registered + ", expected " + report.ServiceAccount)
	}
	logger.Info("service account verified", "service_account", report.Registered, "tx_hash", report.Receipt.TxHash)
	return nil
}
