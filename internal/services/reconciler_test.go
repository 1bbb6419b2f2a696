package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/codyseavey/tcg-inventory-sync/internal/models"
	"github.com/codyseavey/tcg-inventory-sync/internal/store"
)

func newTestReconciler(st store.Store, pub ProgressPublisher) *Reconciler {
	return NewReconciler(st, NewCatalogResolver(st, zap.NewNop()), pub, zap.NewNop())
}

func TestReconcileMergeOverwrites(t *testing.T) {
	st := newTestStore(t)
	r := newTestReconciler(st, nil)
	ctx := context.Background()

	first, err := r.Reconcile(ctx, "job-1", "seller", []models.InventoryRecord{
		rec("Lightning Bolt", "Alpha", 4, "1.00"),
		rec("Counterspell", "Alpha", 2, "3.00"),
	}, models.SyncModeMerge)
	if err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}
	if len(first.Added) != 2 || len(first.Updated) != 0 {
		t.Errorf("first batch added=%d updated=%d, want 2/0", len(first.Added), len(first.Updated))
	}

	second, err := r.Reconcile(ctx, "job-2", "seller", []models.InventoryRecord{
		rec("LIGHTNING BOLT", "alpha", 2, "1.50"),
	}, models.SyncModeMerge)
	if err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}
	if len(second.Added) != 0 || len(second.Updated) != 1 {
		t.Errorf("second batch added=%d updated=%d, want 0/1", len(second.Added), len(second.Updated))
	}

	holdings, err := st.ListHoldings(ctx, "seller")
	if err != nil {
		t.Fatal(err)
	}
	if len(holdings) != 2 {
		t.Fatalf("holdings = %d, want 2 (merge keeps untouched rows)", len(holdings))
	}
	for _, h := range holdings {
		if h.CatalogEntry.Name != "Lightning Bolt" {
			continue
		}
		if h.Quantity != 2 {
			t.Errorf("Bolt quantity = %d, want 2 (replaced, not summed)", h.Quantity)
		}
		if !h.UnitPrice.Equal(dec("1.50")) {
			t.Errorf("Bolt price = %s, want 1.50", h.UnitPrice)
		}
	}
}

func TestReconcileConditionIsPartOfIdentity(t *testing.T) {
	st := newTestStore(t)
	r := newTestReconciler(st, nil)

	nm := rec("Black Lotus", "Alpha", 1, "10000")
	lp := rec("Black Lotus", "Alpha", 1, "8000")
	lp.Condition = "LP"

	result, err := r.Reconcile(context.Background(), "job", "seller", []models.InventoryRecord{nm, lp}, models.SyncModeMerge)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Added) != 2 {
		t.Errorf("added = %d, want 2 holdings for two conditions", len(result.Added))
	}
	if result.Added[0].Condition != models.ConditionNearMint {
		t.Errorf("default condition = %q, want NM", result.Added[0].Condition)
	}
}

func TestReconcileDuplicateWithinBatchLastWins(t *testing.T) {
	st := newTestStore(t)
	r := newTestReconciler(st, nil)
	ctx := context.Background()

	result, err := r.Reconcile(ctx, "job", "seller", []models.InventoryRecord{
		rec("Shock", "M19", 3, "0.10"),
		rec("Shock", "M19", 7, "0.25"),
	}, models.SyncModeMerge)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Added) != 1 || len(result.Updated) != 1 {
		t.Errorf("added=%d updated=%d, want 1/1", len(result.Added), len(result.Updated))
	}

	holdings, _ := st.ListHoldings(ctx, "seller")
	if len(holdings) != 1 || holdings[0].Quantity != 7 {
		t.Errorf("holdings = %+v, want a single row with quantity 7", holdings)
	}
}

func TestReconcileReplaceAllIsTotal(t *testing.T) {
	st := newTestStore(t)
	r := newTestReconciler(st, nil)
	ctx := context.Background()

	_, err := r.Reconcile(ctx, "job-1", "seller", []models.InventoryRecord{
		rec("Island", "Alpha", 10, "0.50"),
		rec("Swamp", "Alpha", 10, "0.50"),
	}, models.SyncModeMerge)
	if err != nil {
		t.Fatal(err)
	}
	// Another user's holdings are untouched by replace-all
	if _, err := r.Reconcile(ctx, "job-x", "other", []models.InventoryRecord{rec("Island", "Alpha", 1, "0.50")}, models.SyncModeMerge); err != nil {
		t.Fatal(err)
	}

	result, err := r.Reconcile(ctx, "job-2", "seller", []models.InventoryRecord{
		rec("Mountain", "Alpha", 5, "0.75"),
	}, models.SyncModeReplaceAll)
	if err != nil {
		t.Fatal(err)
	}
	if result.Removed != 2 {
		t.Errorf("Removed = %d, want 2", result.Removed)
	}
	if len(result.Added) != 1 {
		t.Errorf("Added = %d, want 1", len(result.Added))
	}

	holdings, _ := st.ListHoldings(ctx, "seller")
	if len(holdings) != 1 || holdings[0].CatalogEntry.Name != "Mountain" {
		t.Errorf("holdings after replace-all = %+v, want only Mountain", holdings)
	}
	others, _ := st.ListHoldings(ctx, "other")
	if len(others) != 1 {
		t.Errorf("other user's holdings = %d, want 1", len(others))
	}
}

func TestReconcileReplaceAllClearFailure(t *testing.T) {
	st := &faultyStore{Store: newTestStore(t), failDeleteHold: true}
	r := newTestReconciler(st, nil)

	_, err := r.Reconcile(context.Background(), "job", "seller", []models.InventoryRecord{rec("Forest", "Alpha", 1, "0.10")}, models.SyncModeReplaceAll)
	var recErr *ReconciliationError
	if !errors.As(err, &recErr) {
		t.Fatalf("error = %v, want *ReconciliationError", err)
	}

	holdings, _ := st.ListHoldings(context.Background(), "seller")
	if len(holdings) != 0 {
		t.Errorf("no record should be applied after a failed clear, got %d", len(holdings))
	}
}

func TestReconcilePartialFailure(t *testing.T) {
	st := &faultyStore{Store: newTestStore(t), failNameKey: "broken"}
	r := newTestReconciler(st, nil)

	result, err := r.Reconcile(context.Background(), "job", "seller", []models.InventoryRecord{
		rec("Giant Growth", "Alpha", 1, "0.25"),
		rec("Broken", "Alpha", 1, "0.25"),
		rec("Dark Ritual", "Alpha", 1, "0.25"),
	}, models.SyncModeMerge)
	if err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}
	if len(result.Added) != 2 {
		t.Errorf("Added = %d, want 2", len(result.Added))
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Errors = %d, want 1", len(result.Errors))
	}
	if result.Errors[0].Item != "Broken" {
		t.Errorf("error item = %q, want Broken", result.Errors[0].Item)
	}
	if result.Added[0].Name != "Giant Growth" || result.Added[1].Name != "Dark Ritual" {
		t.Errorf("input order not preserved: %s, %s", result.Added[0].Name, result.Added[1].Name)
	}
}

func TestReconcilePublishesMilestones(t *testing.T) {
	st := newTestStore(t)
	pub := &recordingPublisher{}
	r := newTestReconciler(st, pub)

	var records []models.InventoryRecord
	for i := 0; i < 60; i++ {
		records = append(records, rec(fmt.Sprintf("Card %d", i), "Set", 1, "1.00"))
	}
	if _, err := r.Reconcile(context.Background(), "job", "seller", records, models.SyncModeMerge); err != nil {
		t.Fatal(err)
	}

	want := []int{21, 31, 78, 90}
	if len(pub.updates) != len(want) {
		t.Fatalf("published %v, want %v", pub.updates, want)
	}
	for i := range want {
		if pub.updates[i] != want[i] {
			t.Errorf("update %d = %d, want %d", i, pub.updates[i], want[i])
		}
	}
	if pub.status[3] != "Processing item 60 of 60..." {
		t.Errorf("last status = %q", pub.status[3])
	}
}

func TestIsMilestone(t *testing.T) {
	tests := []struct {
		idx, total int
		want       bool
	}{
		{1, 100, true},
		{2, 100, false},
		{10, 100, true},
		{11, 100, false},
		{50, 100, true},
		{100, 100, true},
		{150, 200, true},
		{7, 7, true},
		{99, 200, false},
	}
	for _, tt := range tests {
		if got := isMilestone(tt.idx, tt.total); got != tt.want {
			t.Errorf("isMilestone(%d, %d) = %v, want %v", tt.idx, tt.total, got, tt.want)
		}
	}
}
