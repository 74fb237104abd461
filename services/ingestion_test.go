package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/amal-sh/Blockchain-supplychain/apperr"
	"github.com/amal-sh/Blockchain-supplychain/models"
	"github.com/amal-sh/Blockchain-supplychain/store"
)

const farmWallet = "0x00000000000000000000000000000000000000aa"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubChain struct {
	mu       sync.Mutex
	role     uint8
	roleErr  error
	failOn   map[string]error
	block    bool
	onFile   func(ctx context.Context)
	filed    []string
	wallets  []string
	roleRead int
}

func (s *stubChain) FileInsuranceClaimFor(ctx context.Context, farm, sensorType, sensorValue string) (string, error) {
	if s.onFile != nil {
		s.onFile(ctx)
	}
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filed = append(s.filed, sensorType)
	s.wallets = append(s.wallets, farm)
	if err := s.failOn[sensorType]; err != nil {
		return "", err
	}
	return "0xtx-" + sensorType, nil
}

func (s *stubChain) Role(context.Context, string) (uint8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roleRead++
	return s.role, s.roleErr
}

type recordingNotifier struct {
	readings []models.SensorReading
	alerts   [][]models.Alert
}

func (n *recordingNotifier) NotifyReading(r models.SensorReading, alerts []models.Alert) {
	n.readings = append(n.readings, r)
	n.alerts = append(n.alerts, alerts)
}

type failingReadings struct{ store.ReadingStore }

func (failingReadings) InsertReading(context.Context, *models.SensorReading) (string, error) {
	return "", errors.New("disk full")
}

func m(v float64) *models.Measurement {
	mv := models.Measurement(v)
	return &mv
}

func request(temp, hum, soil, rain float64, farmID string) models.SensorReadingRequest {
	return models.SensorReadingRequest{Temperature: m(temp), Humidity: m(hum), Soil: m(soil), Rain: m(rain), FarmID: farmID}
}

func seedFarm(t *testing.T, s *store.MemoryStore, wallet string) string {
	t.Helper()
	id, err := s.InsertFarm(context.Background(), &models.Farm{Name: "farmer1", WalletAddress: wallet})
	if err != nil {
		t.Fatalf("insert farm: %v", err)
	}
	return id
}

func newIngestion(s *store.MemoryStore, chain ClaimFiler, verifyRole bool, opts ...IngestionOption) *SensorIngestion {
	opts = append(opts, WithClaims(NewClaimSubmitter(chain, time.Second, discardLogger()), verifyRole))
	return NewSensorIngestion(s, s, discardLogger(), opts...)
}

func TestIngestValidation(t *testing.T) {
	svc := NewSensorIngestion(store.NewMemoryStore(), store.NewMemoryStore(), discardLogger())

	req := request(20, 50, 30, 0, "farm-1")
	req.Rain = nil
	if _, err := svc.Ingest(context.Background(), req); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Ingest(context.Background(), request(20, 50, 30, 0, "")); err == nil || err.Error() != "farmId is required" {
		t.Fatalf("expected farmId error, got %v", err)
	}
}

func TestIngestZeroReadingsAreNotMissing(t *testing.T) {
	s := store.NewMemoryStore()
	svc := NewSensorIngestion(s, s, discardLogger())
	resp, err := svc.Ingest(context.Background(), request(0, 50, 30, 0, "farm-1"))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if resp.ID == "" || len(resp.Alerts) != 0 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestIngestStorageFailureStopsBeforeSubmission(t *testing.T) {
	chain := &stubChain{role: RoleFarm}
	mem := store.NewMemoryStore()
	farmID := seedFarm(t, mem, farmWallet)
	svc := NewSensorIngestion(failingReadings{mem}, mem, discardLogger(),
		WithClaims(NewClaimSubmitter(chain, time.Second, discardLogger()), true))

	_, err := svc.Ingest(context.Background(), request(40, 50, 30, 0, farmID))
	if !apperr.IsStorage(err) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if len(chain.filed) != 0 || chain.roleRead != 0 {
		t.Fatalf("chain touched after failed persistence: filed=%v roles=%d", chain.filed, chain.roleRead)
	}
}

func TestIngestPersistsBeforeSubmitting(t *testing.T) {
	mem := store.NewMemoryStore()
	farmID := seedFarm(t, mem, farmWallet)
	chain := &stubChain{role: RoleFarm}
	chain.onFile = func(ctx context.Context) {
		saved, _ := mem.FindReadings(ctx, farmID, 0)
		if len(saved) != 1 {
			t.Errorf("reading not persisted before submission: %d saved", len(saved))
		}
	}
	notifier := &recordingNotifier{}
	svc := newIngestion(mem, chain, true, WithNotifier(notifier))

	resp, err := svc.Ingest(context.Background(), request(37, 50, 30, 60, farmID))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(resp.Alerts) != 2 || len(resp.BlockchainRecords) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.BlockchainRecords[0].SensorType != models.SensorTemperature || resp.BlockchainRecords[1].SensorType != models.SensorRain {
		t.Fatalf("unexpected record order: %+v", resp.BlockchainRecords)
	}
	for _, rec := range resp.BlockchainRecords {
		if !rec.Blockchain.Success || rec.Blockchain.TxHash == "" {
			t.Fatalf("expected success: %+v", rec)
		}
	}
	if chain.wallets[0] != farmWallet {
		t.Fatalf("claim filed for %s", chain.wallets[0])
	}
	if len(notifier.readings) != 1 || notifier.readings[0].ID != resp.ID || len(notifier.alerts[0]) != 2 {
		t.Fatalf("unexpected notifications: %+v", notifier)
	}
}

func TestIngestSubmissionFailureDoesNotAbortLoop(t *testing.T) {
	mem := store.NewMemoryStore()
	farmID := seedFarm(t, mem, farmWallet)
	chain := &stubChain{role: RoleFarm, failOn: map[string]error{"Temperature": errors.New("execution reverted")}}
	svc := newIngestion(mem, chain, true)

	resp, err := svc.Ingest(context.Background(), request(39, 20, 30, 0, farmID))
	if err != nil {
		t.Fatalf("ingest must not fail on submission errors: %v", err)
	}
	if resp.ID == "" {
		t.Fatalf("missing persisted id")
	}
	if len(chain.filed) != 2 {
		t.Fatalf("expected both alerts attempted, got %v", chain.filed)
	}
	first, second := resp.BlockchainRecords[0], resp.BlockchainRecords[1]
	if first.Blockchain.Success || first.Blockchain.Error == "" {
		t.Fatalf("expected first submission to fail: %+v", first)
	}
	if !second.Blockchain.Success {
		t.Fatalf("expected second submission to succeed: %+v", second)
	}
	saved, _ := mem.FindReadings(context.Background(), farmID, 0)
	if len(saved) != 1 || saved[0].ID != resp.ID {
		t.Fatalf("persisted record changed: %+v", saved)
	}
}

func TestIngestMissingFarmWallet(t *testing.T) {
	mem := store.NewMemoryStore()
	noWallet := seedFarm(t, mem, "")
	chain := &stubChain{role: RoleFarm}
	svc := newIngestion(mem, chain, true)

	for _, farmID := range []string{"unknown-farm", noWallet} {
		resp, err := svc.Ingest(context.Background(), request(40, 50, 30, 0, farmID))
		if err != nil {
			t.Fatalf("ingest: %v", err)
		}
		if resp.BlockchainWarning != WarningNoWallet || resp.BlockchainRecords != nil || len(resp.Alerts) != 1 {
			t.Fatalf("unexpected response: %+v", resp)
		}
	}
	if len(chain.filed) != 0 {
		t.Fatalf("no claim should be filed: %v", chain.filed)
	}
}

func TestIngestFarmNotRegisteredOnChain(t *testing.T) {
	mem := store.NewMemoryStore()
	farmID := seedFarm(t, mem, farmWallet)
	chain := &stubChain{role: 0}
	svc := newIngestion(mem, chain, true)

	resp, err := svc.Ingest(context.Background(), request(40, 50, 30, 0, farmID))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if resp.BlockchainWarning != WarningNotRegistered || len(chain.filed) != 0 {
		t.Fatalf("unexpected outcome: %+v filed=%v", resp, chain.filed)
	}
}

func TestIngestRoleReadFailureStillSubmits(t *testing.T) {
	mem := store.NewMemoryStore()
	farmID := seedFarm(t, mem, farmWallet)
	chain := &stubChain{roleErr: errors.New("could not decode result data")}
	svc := newIngestion(mem, chain, true)

	resp, err := svc.Ingest(context.Background(), request(40, 50, 30, 0, farmID))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if resp.BlockchainWarning != "" || len(resp.BlockchainRecords) != 1 || !resp.BlockchainRecords[0].Blockchain.Success {
		t.Fatalf("expected submission despite role read failure: %+v", resp)
	}
}

func TestIngestWithoutChain(t *testing.T) {
	mem := store.NewMemoryStore()
	farmID := seedFarm(t, mem, farmWallet)
	svc := NewSensorIngestion(mem, mem, discardLogger())

	resp, err := svc.Ingest(context.Background(), request(40, 50, 30, 0, farmID))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if resp.BlockchainWarning != WarningNoChain {
		t.Fatalf("unexpected warning: %q", resp.BlockchainWarning)
	}
}

func TestClaimSubmitterTimeout(t *testing.T) {
	chain := &stubChain{block: true}
	submitter := NewClaimSubmitter(chain, 20*time.Millisecond, discardLogger())

	_, err := submitter.Submit(context.Background(), farmWallet, models.Alert{SensorType: models.SensorRain})
	var subErr *apperr.SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("expected SubmissionError, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded cause, got %v", err)
	}
}

func TestClaimSubmitterIgnoresCallerCancellation(t *testing.T) {
	var sawErr error
	chain := &stubChain{onFile: func(ctx context.Context) { sawErr = ctx.Err() }}
	submitter := NewClaimSubmitter(chain, time.Second, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := submitter.Submit(ctx, farmWallet, models.Alert{SensorType: models.SensorRain}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sawErr != nil {
		t.Fatalf("submission saw cancelled context: %v", sawErr)
	}
}

func TestHistoryChronologicalAndCapped(t *testing.T) {
	mem := store.NewMemoryStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 120; i++ {
		r := &models.SensorReading{FarmID: "farm-1", Temperature: float64(i), Timestamp: base.Add(time.Duration(i) * time.Minute)}
		if _, err := mem.InsertReading(context.Background(), r); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	svc := NewSensorIngestion(mem, mem, discardLogger())

	got, err := svc.History(context.Background(), "farm-1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(got) != store.ReadingHistoryLimit {
		t.Fatalf("expected %d readings, got %d", store.ReadingHistoryLimit, len(got))
	}
	if got[0].Temperature != 20 || got[len(got)-1].Temperature != 119 {
		t.Fatalf("unexpected window: first=%v last=%v", got[0].Temperature, got[len(got)-1].Temperature)
	}
	if _, err := svc.History(context.Background(), ""); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	empty, err := svc.History(context.Background(), "nobody")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v %v", empty, err)
	}
}
