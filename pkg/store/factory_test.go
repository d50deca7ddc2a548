package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cectx "github.com/easyops/contextengine/pkg/context"
	"github.com/easyops/contextengine/pkg/core/config"
	"github.com/easyops/contextengine/pkg/otel"
)

func ids(items []cectx.CandidateItem) string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return strings.Join(out, ",")
}

func TestNew_UnknownBackend(t *testing.T) {
	if _, err := New(context.Background(), "redis", config.StoreConfig{}); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got %v", err)
	}
}

func TestOpen_MemoryWithSeed(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(seed, []byte("items:\n  - id: g1\n    type: goal\n    content: x\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	set, err := Open(context.Background(), config.StoreConfig{Backend: config.BackendMemory, SeedFile: seed}, otel.NewNoopMetrics())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer set.Close()

	items, err := set.Retriever().Retrieve(context.Background(), cectx.RetrievalRequest{})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if ids(items) != "g1" {
		t.Errorf("items = %s, want g1", ids(items))
	}
}

func TestOpen_MultipleBackends(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(seed, []byte("items:\n  - id: m1\n    type: goal\n    content: x\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := config.StoreConfig{
		Backends:   []string{config.BackendMemory, config.BackendSQLite},
		SeedFile:   seed,
		SQLitePath: filepath.Join(t.TempDir(), "items.db"),
	}
	set, err := Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer set.Close()

	if len(set.Stores) != 2 {
		t.Fatalf("expected 2 stores, got %d", len(set.Stores))
	}
	if err := set.Stores[1].Put(context.Background(), cectx.NewCandidateItem("s1", cectx.ItemTypeDocument, "y")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	items, err := set.Retriever().Retrieve(context.Background(), cectx.RetrievalRequest{})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if ids(items) != "m1,s1" {
		t.Errorf("items = %s, want m1,s1 in backend order", ids(items))
	}
}

func TestOpen_BadSeedFails(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{
		Backend:  config.BackendMemory,
		SeedFile: filepath.Join(t.TempDir(), "missing.yaml"),
	}, nil)
	if err == nil {
		t.Error("expected error for missing seed file")
	}
}
