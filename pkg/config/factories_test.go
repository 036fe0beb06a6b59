package config

import (
	"context"
	"strings"
	"testing"
)

func TestCreateObjectClient_Memory(t *testing.T) {
	cfg := &RemoteConfig{Type: "memory"}
	client, err := CreateObjectClient(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("CreateObjectClient failed: %v", err)
	}
	if client == nil {
		t.Fatal("nil client")
	}
}

func TestCreateObjectClient_UnknownType(t *testing.T) {
	cfg := &RemoteConfig{Type: "ftp"}
	_, err := CreateObjectClient(context.Background(), cfg, nil)
	if err == nil || !strings.Contains(err.Error(), "unknown remote store type") {
		t.Fatalf("expected unknown type error, got %v", err)
	}
}

func TestCreateObjectClient_S3MissingBucket(t *testing.T) {
	cfg := &RemoteConfig{Type: "s3", S3: map[string]any{"region": "us-east-1"}}
	_, err := CreateObjectClient(context.Background(), cfg, nil)
	if err == nil || !strings.Contains(err.Error(), "bucket is required") {
		t.Fatalf("expected bucket error, got %v", err)
	}
}

func TestCreateRangeStore_Memory(t *testing.T) {
	store, err := CreateRangeStore(context.Background(), &CacheConfig{Type: "memory"})
	if err != nil {
		t.Fatalf("CreateRangeStore failed: %v", err)
	}
	defer func() { _ = store.Close() }()
}

func TestCreateRangeStore_Badger(t *testing.T) {
	cfg := &CacheConfig{
		Type:   "badger",
		Badger: map[string]any{"dir": t.TempDir()},
	}
	store, err := CreateRangeStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("CreateRangeStore failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestCreateRangeStore_UnknownType(t *testing.T) {
	_, err := CreateRangeStore(context.Background(), &CacheConfig{Type: "redis"})
	if err == nil || !strings.Contains(err.Error(), "unknown cache type") {
		t.Fatalf("expected unknown type error, got %v", err)
	}
}

func TestCreateLimiter(t *testing.T) {
	if l := CreateLimiter(&RemoteConfig{}); l != nil {
		t.Error("expected nil limiter when throttling is disabled")
	}
	if l := CreateLimiter(&RemoteConfig{RequestsPerSecond: 10, Burst: 20}); l == nil {
		t.Error("expected limiter")
	}
}
