package services

import (
	"context"
	"errors"
	"testing"

	"github.com/amal-sh/Blockchain-supplychain/apperr"
	"github.com/amal-sh/Blockchain-supplychain/models"
)

type stubRegistry struct {
	owner       string
	deployErr   error
	registered  string
	setCalls    int
	readbackOff bool
}

func (r *stubRegistry) AssertDeployed(context.Context) error { return r.deployErr }

func (r *stubRegistry) Owner(context.Context) (string, error) { return r.owner, nil }

func (r *stubRegistry) SetSensorServiceAccount(_ context.Context, account string) (*models.TxReceipt, error) {
	r.setCalls++
	if !r.readbackOff {
		r.registered = account
	}
	return &models.TxReceipt{TxHash: "0xabc", BlockNumber: 7, GasUsed: 21000}, nil
}

func (r *stubRegistry) SensorServiceAccount(context.Context) (string, error) { return r.registered, nil }

const (
	ownerAddr   = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	serviceAddr = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

func TestProvisionServiceAccount(t *testing.T) {
	reg := &stubRegistry{owner: ownerAddr}
	report, err := ProvisionServiceAccount(context.Background(), reg, "0xF39FD6E51AAD88F6F4CE6AB8827279CFFFB92266", serviceAddr, discardLogger())
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	if !report.Match || report.Registered != serviceAddr || report.Receipt.TxHash != "0xabc" {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestProvisionRejectsNonOwner(t *testing.T) {
	reg := &stubRegistry{owner: ownerAddr}
	_, err := ProvisionServiceAccount(context.Background(), reg, serviceAddr, serviceAddr, discardLogger())
	var authErr *apperr.AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
	if reg.setCalls != 0 {
		t.Fatalf("transaction sent by non-owner")
	}
}

func TestProvisionReportsReadbackMismatch(t *testing.T) {
	reg := &stubRegistry{owner: ownerAddr, registered: ownerAddr, readbackOff: true}
	report, err := ProvisionServiceAccount(context.Background(), reg, ownerAddr, serviceAddr, discardLogger())
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	if report.Match {
		t.Fatalf("expected mismatch, got %+v", report)
	}
}

func TestProvisionNotDeployed(t *testing.T) {
	notDeployed := errors.New("no contract code")
	reg := &stubRegistry{owner: ownerAddr, deployErr: notDeployed}
	if _, err := ProvisionServiceAccount(context.Background(), reg, ownerAddr, serviceAddr, discardLogger()); !errors.Is(err, notDeployed) {
		t.Fatalf("expected deploy error, got %v", err)
	}
	if reg.setCalls != 0 {
		t.Fatalf("transaction sent to empty address")
	}
}
