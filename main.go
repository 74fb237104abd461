package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amal-sh/Blockchain-supplychain/chain"
	"github.com/amal-sh/Blockchain-supplychain/config"
	"github.com/amal-sh/Blockchain-supplychain/controllers"
	"github.com/amal-sh/Blockchain-supplychain/metrics"
	"github.com/amal-sh/Blockchain-supplychain/mqttsub"
	"github.com/amal-sh/Blockchain-supplychain/services"
	"github.com/amal-sh/Blockchain-supplychain/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	metrics.Init()

	db, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := db.Close(closeCtx); err != nil {
			logger.Warn("failed to close store", "error", err)
		}
	}()
	logger.Info("store ready", "driver", cfg.StoreDriver)

	hub := controllers.NewHub(logger)
	ingestOpts := []services.IngestionOption{services.WithNotifier(hub)}

	var claimReader controllers.ClaimReader
	if cfg.ChainEnabled() {
		if err := cfg.RequireChain(); err != nil {
			return err
		}
		client, err := chain.Dial(ctx, cfg.RPCURL, cfg.ContractAddress, cfg.SensorServicePrivateKey)
		if err != nil {
			return err
		}
		defer client.Close()
		if err := client.AssertDeployed(ctx); err != nil {
			return err
		}
		logger.Info("blockchain client ready", "contract", cfg.ContractAddress, "service_account", client.SignerAddress())

		submitter := services.NewClaimSubmitter(client, cfg.ClaimSubmitTimeout, logger)
		ingestOpts = append(ingestOpts, services.WithClaims(submitter, cfg.VerifyFarmRole))
		claimReader = client
	} else {
		logger.Warn("CONTRACT_ADDRESS not set, threshold breaches will not be filed on-chain")
	}

	ingestion := services.NewSensorIngestion(db, db, logger, ingestOpts...)

	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		logger.Warn("JWT_SECRET not set, using a random secret; tokens will not survive a restart")
		secret = []byte(uuid.NewString())
	}

	router := controllers.NewRouter(controllers.RouterConfig{
		Sensor:      controllers.NewSensorController(ingestion),
		Image:       controllers.NewImageController(services.NewImageIntake(db, cfg.UploadDir, logger)),
		Farm:        controllers.NewFarmController(db, claimReader, logger),
		Auth:        controllers.NewAuthController(db, secret, logger),
		Export:      controllers.NewExportController(db, logger),
		Hub:         hub,
		Users:       db,
		JWTSecret:   secret,
		UploadDir:   cfg.UploadDir,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	})

	if cfg.MQTTBrokerURL != "" {
		sub := mqttsub.New(mqttsub.Config{
			BrokerURL: cfg.MQTTBrokerURL,
			Topic:     cfg.MQTTTopic,
			ClientID:  cfg.MQTTClientID,
		}, ingestion, logger)
		if err := sub.Start(ctx); err != nil {
			return err
		}
		defer sub.Stop()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
