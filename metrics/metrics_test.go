package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveBeforeInitIsNoop(t *testing.T) {
	if ingestRequests != nil {
		t.Skip("collectors already registered")
	}
	ObserveIngest("http", ResultSuccess, time.Millisecond)
	IncAlert("Rain", "severe")
	ObserveClaim(ResultError, time.Second)
	ObserveImage("match", 10)
	SetWebsocketClients(3)
}

func TestCollectors(t *testing.T) {
	Init()
	Init()

	ObserveIngest("mqtt", ResultInvalid, 5*time.Millisecond)
	IncAlert("Temperature", "alert")
	IncAlert("Temperature", "alert")
	ObserveClaim(ResultSkipped, 0)
	ObserveImage("mismatch", 2048)
	SetWebsocketClients(4)

	if got := testutil.ToFloat64(ingestRequests.WithLabelValues("mqtt", ResultInvalid)); got != 1 {
		t.Fatalf("ingest requests = %v", got)
	}
	if got := testutil.ToFloat64(alertsTotal.WithLabelValues("Temperature", "alert")); got != 2 {
		t.Fatalf("alerts = %v", got)
	}
	if got := testutil.ToFloat64(claimSubmissions.WithLabelValues(ResultSkipped)); got != 1 {
		t.Fatalf("skipped claims = %v", got)
	}
	if got := testutil.ToFloat64(imageBytes); got != 2048 {
		t.Fatalf("image bytes = %v", got)
	}
	if got := testutil.ToFloat64(wsClients); got != 4 {
		t.Fatalf("websocket clients = %v", got)
	}
}
