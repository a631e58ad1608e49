package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/corelabs/core/internal/common"
	"github.com/corelabs/core/internal/interfaces"
	"github.com/corelabs/core/internal/models"
)

func newUnitTestManager(t *testing.T) *Manager {
	t.Helper()
	config := &common.Config{}
	config.Storage.Driver = "badger"
	config.Storage.Path = t.TempDir()
	manager, err := NewManager(common.NewSilentLogger(), config)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(func() { manager.Close() })
	return manager
}

func TestUserCRUD(t *testing.T) {
	manager := newUnitTestManager(t)
	store := manager.InternalStore()
	ctx := context.Background()

	user := &models.InternalUser{
		ID:    "alice",
		Email: "alice@example.com",
		Role:  models.RoleAdmin,
	}
	if err := store.SaveUser(ctx, user); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}

	got, err := store.GetUser(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Email != "alice@example.com" || got.Role != models.RoleAdmin {
		t.Errorf("got %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	// Update preserves CreatedAt
	created := got.CreatedAt
	user.Email = "alice2@example.com"
	if err := store.SaveUser(ctx, user); err != nil {
		t.Fatalf("SaveUser update: %v", err)
	}
	got, _ = store.GetUser(ctx, "alice")
	if got.Email != "alice2@example.com" {
		t.Error("Email not updated")
	}
	if !got.CreatedAt.Equal(created) {
		t.Error("CreatedAt should be preserved on update")
	}

	ids, err := store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(ids) != 1 || ids[0] != "alice" {
		t.Errorf("ListUsers: got %v", ids)
	}

	if err := store.DeleteUser(ctx, "alice"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := store.GetUser(ctx, "alice"); !errors.Is(err, interfaces.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestUserKVAndSystemKV(t *testing.T) {
	manager := newUnitTestManager(t)
	store := manager.InternalStore()
	ctx := context.Background()

	if err := store.SetUserKV(ctx, "alice", "theme", "dark"); err != nil {
		t.Fatalf("SetUserKV: %v", err)
	}
	kv, err := store.GetUserKV(ctx, "alice", "theme")
	if err != nil {
		t.Fatalf("GetUserKV: %v", err)
	}
	if kv.Value != "dark" {
		t.Errorf("Value = %q, want dark", kv.Value)
	}

	// Same key under a different user is a distinct record
	if _, err := store.GetUserKV(ctx, "bob", "theme"); !errors.Is(err, interfaces.ErrNotFound) {
		t.Errorf("expected ErrNotFound for other user, got %v", err)
	}

	if err := store.DeleteUserKV(ctx, "alice", "theme"); err != nil {
		t.Fatalf("DeleteUserKV: %v", err)
	}
	if _, err := store.GetUserKV(ctx, "alice", "theme"); !errors.Is(err, interfaces.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// System KV: missing keys read as empty, not an error
	val, err := store.GetSystemKV(ctx, "eodhd_api_key")
	if err != nil {
		t.Fatalf("GetSystemKV: %v", err)
	}
	if val != "" {
		t.Errorf("missing system key = %q, want empty", val)
	}
	if err := store.SetSystemKV(ctx, "eodhd_api_key", "demo"); err != nil {
		t.Fatalf("SetSystemKV: %v", err)
	}
	val, _ = store.GetSystemKV(ctx, "eodhd_api_key")
	if val != "demo" {
		t.Errorf("system key = %q, want demo", val)
	}
}

func TestPortfolioCRUD(t *testing.T) {
	manager := newUnitTestManager(t)
	store := manager.PortfolioStore()
	ctx := context.Background()

	if _, err := store.GetPortfolio(ctx, "alice"); !errors.Is(err, interfaces.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	portfolio := &models.Portfolio{
		UserID: "alice",
		Name:   "My Portfolio",
		Holdings: []models.Holding{
			{Symbol: "AAPL.US", Amount: 10, Basis: models.BasisShares, Currency: "USD"},
		},
	}
	if err := store.SavePortfolio(ctx, portfolio); err != nil {
		t.Fatalf("SavePortfolio: %v", err)
	}

	got, err := store.GetPortfolio(ctx, "alice")
	if err != nil {
		t.Fatalf("GetPortfolio: %v", err)
	}
	if len(got.Holdings) != 1 || got.Holdings[0].Symbol != "AAPL.US" {
		t.Errorf("got %+v", got)
	}

	// Save replaces wholesale
	portfolio.Holdings = []models.Holding{
		{Symbol: "MSFT.US", Amount: 5, Basis: models.BasisShares, Currency: "USD"},
	}
	if err := store.SavePortfolio(ctx, portfolio); err != nil {
		t.Fatalf("SavePortfolio update: %v", err)
	}
	got, _ = store.GetPortfolio(ctx, "alice")
	if len(got.Holdings) != 1 || got.Holdings[0].Symbol != "MSFT.US" {
		t.Errorf("holdings not replaced: %+v", got.Holdings)
	}

	ids, err := store.ListUserIDs(ctx)
	if err != nil {
		t.Fatalf("ListUserIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != "alice" {
		t.Errorf("ListUserIDs: got %v", ids)
	}

	if err := store.DeletePortfolio(ctx, "alice"); err != nil {
		t.Fatalf("DeletePortfolio: %v", err)
	}
	if _, err := store.GetPortfolio(ctx, "alice"); !errors.Is(err, interfaces.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSnapshotUpsertKeepsOneRowPerDay(t *testing.T) {
	manager := newUnitTestManager(t)
	store := manager.SnapshotStore()
	ctx := context.Background()

	first := &models.ValueSnapshot{UserID: "alice", Day: "2025-06-02", TotalUSD: 1000}
	if err := store.Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	second := &models.ValueSnapshot{UserID: "alice", Day: "2025-06-02", TotalUSD: 1100}
	if err := store.Upsert(ctx, second); err != nil {
		t.Fatalf("Upsert overwrite: %v", err)
	}

	got, err := store.Get(ctx, "alice", "2025-06-02")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.TotalUSD != 1100 {
		t.Errorf("TotalUSD = %v, want 1100", got.TotalUSD)
	}
	if !got.CreatedAt.Equal(first.CreatedAt) {
		t.Error("CreatedAt should survive the overwrite")
	}

	recent, err := store.ListRecent(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(recent) != 1 {
		t.Errorf("expected 1 row after overwrite, got %d", len(recent))
	}
}

func TestSnapshotQueries(t *testing.T) {
	manager := newUnitTestManager(t)
	store := manager.SnapshotStore()
	ctx := context.Background()

	days := map[string]float64{
		"2025-06-01": 100,
		"2025-06-03": 120,
		"2025-06-05": 90,
	}
	for day, total := range days {
		if err := store.Upsert(ctx, &models.ValueSnapshot{UserID: "alice", Day: day, TotalUSD: total}); err != nil {
			t.Fatalf("Upsert %s: %v", day, err)
		}
	}
	// Another user's snapshot must not bleed into alice's queries
	if err := store.Upsert(ctx, &models.ValueSnapshot{UserID: "bob", Day: "2025-06-04", TotalUSD: 999}); err != nil {
		t.Fatalf("Upsert bob: %v", err)
	}

	// Range is inclusive and ascending
	got, err := store.ListRange(ctx, "alice", "2025-06-01", "2025-06-03")
	if err != nil {
		t.Fatalf("ListRange: %v", err)
	}
	if len(got) != 2 || got[0].Day != "2025-06-01" || got[1].Day != "2025-06-03" {
		t.Errorf("ListRange: got %+v", got)
	}

	// Recent is descending and limited
	recent, err := store.ListRecent(ctx, "alice", 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(recent) != 2 || recent[0].Day != "2025-06-05" || recent[1].Day != "2025-06-03" {
		t.Errorf("ListRecent: got %+v", recent)
	}

	// LatestBefore is strictly before
	latest, err := store.LatestBefore(ctx, "alice", "2025-06-03")
	if err != nil {
		t.Fatalf("LatestBefore: %v", err)
	}
	if latest.Day != "2025-06-01" {
		t.Errorf("LatestBefore: got %s, want 2025-06-01", latest.Day)
	}
	if _, err := store.LatestBefore(ctx, "alice", "2025-06-01"); !errors.Is(err, interfaces.ErrNotFound) {
		t.Errorf("expected ErrNotFound before first day, got %v", err)
	}
}
