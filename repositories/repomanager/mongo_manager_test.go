package repomanager

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mflixapp/mflix/logging"
	"github.com/mflixapp/mflix/metrics"
)

// Connect does not dial until an operation runs, so a manager can be
// constructed and inspected without a running server.
func newTestDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	client, err := mongo.Connect(context.Background(),
		options.Client().ApplyURI("mongodb://localhost:27017"))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	return client.Database("mflix_test")
}

func TestNewMongoManager_WiresAllRepositories(t *testing.T) {
	db := newTestDatabase(t)
	m := metrics.NewCollector(prometheus.NewRegistry())

	mm := NewMongoManager(db, m, logging.NewDiscardLogger())

	if mm.Users() == nil {
		t.Errorf("Users() = nil, want repository")
	}
	if mm.Sessions() == nil {
		t.Errorf("Sessions() = nil, want repository")
	}
	if mm.Comments() == nil {
		t.Errorf("Comments() = nil, want repository")
	}
}
