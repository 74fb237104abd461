package controllers

import (
	"testing"
	"time"

	"github.com/amal-sh/Blockchain-supplychain/models"

	"github.com/gorilla/websocket"
)

func TestHubDropsClientThatStopsReading(t *testing.T) {
	hub := NewHub(nil)
	stalled := &client{conn: &websocket.Conn{}, userID: "u1", send: make(chan []byte, sendBuffer)}
	hub.add(stalled)

	start := time.Now()
	for i := 0; i < sendBuffer+1; i++ {
		hub.NotifyReading(models.SensorReading{FarmID: "f1", Temperature: float64(i)}, nil)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("broadcast blocked on a stalled client for %v", elapsed)
	}
	if n := hub.Clients(); n != 0 {
		t.Fatalf("clients = %d, want stalled client dropped", n)
	}

	queued := 0
	for range stalled.send {
		queued++
	}
	if queued != sendBuffer {
		t.Fatalf("queued = %d, want %d", queued, sendBuffer)
	}

	// Later cleanup from the connection's own goroutines must not close send twice.
	hub.remove(stalled)
}

func TestHubKeepsClientsWithRoom(t *testing.T) {
	hub := NewHub(nil)
	cl := &client{conn: &websocket.Conn{}, userID: "u1", send: make(chan []byte, sendBuffer)}
	hub.add(cl)

	hub.NotifyReading(models.SensorReading{FarmID: "f1"}, []models.Alert{{SensorType: models.SensorTemperature, SensorValue: "39", Severity: models.SeveritySevere}})
	if hub.Clients() != 1 {
		t.Fatalf("client should still be registered")
	}
	if len(cl.send) != 2 {
		t.Fatalf("queued = %d, want update and alert", len(cl.send))
	}
}
