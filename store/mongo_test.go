package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/amal-sh/Blockchain-supplychain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestIDMatch(t *testing.T) {
	hex := primitive.NewObjectID().Hex()
	filter, ok := idMatch(hex).(bson.M)
	if !ok {
		t.Fatalf("hex id should produce an $in filter, got %#v", idMatch(hex))
	}
	in, ok := filter["$in"].(bson.A)
	if !ok || len(in) != 2 {
		t.Fatalf("unexpected filter %#v", filter)
	}
	if oid, ok := in[0].(primitive.ObjectID); !ok || oid.Hex() != hex {
		t.Fatalf("first alternative = %#v, want ObjectID %s", in[0], hex)
	}
	if in[1] != hex {
		t.Fatalf("second alternative = %#v, want string %s", in[1], hex)
	}

	if got := idMatch("farm-a"); got != "farm-a" {
		t.Fatalf("plain id should match as-is, got %#v", got)
	}
}

func openTestMongo(t *testing.T) *MongoStore {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	database := fmt.Sprintf("supplychain_test_%d", time.Now().UnixNano())
	s, err := OpenMongo(context.Background(), uri, database)
	if err != nil {
		t.Fatalf("open mongo: %v", err)
	}
	t.Cleanup(func() {
		ctx := context.Background()
		_ = s.client.Database(database).Drop(ctx)
		_ = s.Close(ctx)
	})
	return s
}

func TestMongoFindReadingsMatchesBothIDForms(t *testing.T) {
	s := openTestMongo(t)
	ctx := context.Background()

	farmID, err := s.InsertFarm(ctx, &models.Farm{Name: "North Field", WalletAddress: "0x01", CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("insert farm: %v", err)
	}

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if _, err := s.InsertReading(ctx, &models.SensorReading{FarmID: farmID, Temperature: 21, Timestamp: base}); err != nil {
		t.Fatalf("insert reading: %v", err)
	}
	// Documents written by other clients may keep the farm reference as a string.
	if _, err := s.readings.InsertOne(ctx, bson.M{"farmId": farmID, "temperature": 22.0, "timestamp": base.Add(time.Minute)}); err != nil {
		t.Fatalf("insert string-keyed reading: %v", err)
	}
	if _, err := s.InsertReading(ctx, &models.SensorReading{FarmID: primitive.NewObjectID().Hex(), Temperature: 99, Timestamp: base}); err != nil {
		t.Fatalf("insert other farm reading: %v", err)
	}

	got, err := s.FindReadings(ctx, farmID, 0)
	if err != nil {
		t.Fatalf("find readings: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("readings = %d, want 2", len(got))
	}
	if got[0].Temperature != 22 || got[1].Temperature != 21 {
		t.Fatalf("want newest first, got %+v", got)
	}
	for _, r := range got {
		if r.FarmID != farmID {
			t.Fatalf("farm id = %q, want %q", r.FarmID, farmID)
		}
	}

	limited, err := s.FindReadings(ctx, farmID, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("limited find = %v, %v", limited, err)
	}
}

func TestMongoFindFarm(t *testing.T) {
	s := openTestMongo(t)
	ctx := context.Background()

	farmID, err := s.InsertFarm(ctx, &models.Farm{Name: "South Field", WalletAddress: "0x02", CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("insert farm: %v", err)
	}

	farm, err := s.FindFarm(ctx, farmID)
	if err != nil {
		t.Fatalf("find farm: %v", err)
	}
	if farm.ID != farmID || farm.WalletAddress != "0x02" {
		t.Fatalf("unexpected farm %+v", farm)
	}

	if _, err := s.FindFarm(ctx, primitive.NewObjectID().Hex()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown farm: got %v, want ErrNotFound", err)
	}
	if _, err := s.FindFarm(ctx, "not-an-object-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("non-hex id: got %v, want ErrNotFound", err)
	}
}
