// Package mqttsub feeds sensor readings published over MQTT into the ingestion pipeline.
package mqttsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amal-sh/Blockchain-supplychain/apperr"
	"github.com/amal-sh/Blockchain-supplychain/metrics"
	"github.com/amal-sh/Blockchain-supplychain/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	Transport = "mqtt"
	QoS       = 1

	connectTimeout = 10 * time.Second
)

// Ingester is the part of services.SensorIngestion the subscriber drives.
type Ingester interface {
	Ingest(ctx context.Context, req models.SensorReadingRequest) (*models.IngestResponse, error)
}

type Config struct {
	BrokerURL string
	Topic     string
	ClientID  string
}

type Subscriber struct {
	cfg    Config
	ingest Ingester
	logger *slog.Logger
	client mqtt.Client
	ctx    context.Context
}

func New(cfg Config, ingest Ingester, logger *slog.Logger) *Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscriber{cfg: cfg, ingest: ingest, logger: logger, ctx: context.Background()}
}

// Start connects to the broker and subscribes. The subscription is renewed on every reconnect.
func (s *Subscriber) Start(ctx context.Context) error {
	s.ctx = ctx
	opts := mqtt.NewClientOptions().
		AddBroker(s.cfg.BrokerURL).
		SetClientID(s.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout).
		SetOrderMatters(false)
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		token := c.Subscribe(s.cfg.Topic, QoS, s.onMessage)
		token.Wait()
		if err := token.Error(); err != nil {
			s.logger.Error("mqtt subscribe failed", "topic", s.cfg.Topic, "error", err)
			return
		}
		s.logger.Info("mqtt subscribed", "broker", s.cfg.BrokerURL, "topic", s.cfg.Topic)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.logger.Warn("mqtt connection lost", "error", err)
	})

	s.client = mqtt.NewClient(opts)
	token := s.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("connect to mqtt broker %s: timed out", s.cfg.BrokerURL)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to mqtt broker %s: %w", s.cfg.BrokerURL, err)
	}
	return nil
}

func (s *Subscriber) Stop() {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(250)
	}
}

func (s *Subscriber) onMessage(_ mqtt.Client, msg mqtt.Message) {
	if err := s.HandleMessage(s.ctx, msg.Topic(), msg.Payload()); err != nil {
		s.logger.Error("mqtt reading rejected", "topic", msg.Topic(), "error", err)
	}
}

// HandleMessage decodes one payload and runs it through ingestion. A payload without
// farmId takes it from the topic.
func (s *Subscriber) HandleMessage(ctx context.Context, topic string, payload []byte) error {
	start := time.Now()

	var req models.SensorReadingRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		metrics.ObserveIngest(Transport, metrics.ResultInvalid, time.Since(start))
		return &apperr.ValidationError{Message: "Invalid data", Err: err}
	}
	if req.FarmID == "" {
		req.FarmID = FarmIDFromTopic(topic)
	}

	resp, err := s.ingest.Ingest(ctx, req)
	if err != nil {
		result := metrics.ResultError
		if apperr.IsValidation(err) {
			result = metrics.ResultInvalid
		}
		metrics.ObserveIngest(Transport, result, time.Since(start))
		return err
	}
	metrics.ObserveIngest(Transport, metrics.ResultSuccess, time.Since(start))

	attrs := []any{"topic", topic, "id", resp.ID, "alerts", len(resp.Alerts)}
	if resp.BlockchainWarning != "" {
		attrs = append(attrs, "blockchain_warning", resp.BlockchainWarning)
	}
	s.logger.Info("mqtt reading ingested", attrs...)
	return nil
}

// FarmIDFromTopic returns the segment following "farms/" in topics like farms/<id>/sensors.
func FarmIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	for i := 0; i+1 < len(parts); i++ {
		if parts[i] == "farms" {
			return parts[i+1]
		}
	}
	return ""
}
