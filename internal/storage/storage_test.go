package storage

import (
	"testing"

	"github.com/lehigh-university-libraries/imgtranslate/internal/models"
)

func TestItemStoreOrder(t *testing.T) {
	s := New()
	for _, id := range []string{"a", "b", "c"} {
		s.Set(models.BatchItem{ID: id, Status: models.StatusIdle})
	}

	s.Set(models.BatchItem{ID: "b", Status: models.StatusSuccess})
	if !s.Delete("a") {
		t.Fatal("Expected delete of existing item to succeed")
	}
	if s.Delete("a") {
		t.Error("Expected second delete to report false")
	}

	all := s.GetAll()
	if len(all) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(all))
	}
	if all[0].ID != "b" || all[1].ID != "c" {
		t.Errorf("Expected order [b c], got [%s %s]", all[0].ID, all[1].ID)
	}
	if all[0].Status != models.StatusSuccess {
		t.Errorf("Expected replaced item to keep its position with new status, got %s", all[0].Status)
	}
}

func TestItemStoreSnapshotIsolation(t *testing.T) {
	s := New()
	s.Set(models.BatchItem{ID: "a", Status: models.StatusIdle})

	item, _ := s.Get("a")
	item.Status = models.StatusError

	stored, _ := s.Get("a")
	if stored.Status != models.StatusIdle {
		t.Errorf("Expected stored item to be unaffected by caller changes, got %s", stored.Status)
	}
}

func TestItemStoreClear(t *testing.T) {
	s := New()
	s.Set(models.BatchItem{ID: "a"})
	s.Set(models.BatchItem{ID: "b"})

	if n := s.Clear(); n != 2 {
		t.Errorf("Expected 2 cleared, got %d", n)
	}
	if s.Len() != 0 {
		t.Errorf("Expected empty store, got %d", s.Len())
	}
	if _, ok := s.Get("a"); ok {
		t.Error("Expected item to be gone after clear")
	}
}
