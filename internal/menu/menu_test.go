package menu

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleMenu = `[
  {
    "category": "Сэндвичи",
    "items": [
      {"id": "snd-1", "name": "Классический", "price": 100, "weight": 250},
      {"id": "snd-2", "name": "Фирменный", "price": 250.5, "weight": 320}
    ]
  },
  {
    "category": "Напитки",
    "items": [
      {"id": "drk-1", "name": "Морс", "price": 90, "weight": 400}
    ]
  }
]`

func writeMenu(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "menu.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write menu: %v", err)
	}
	return path
}

func TestNewServiceLoadsMenu(t *testing.T) {
	svc, err := NewService(writeMenu(t, sampleMenu))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	cats := svc.Categories()
	if len(cats) != 2 {
		t.Fatalf("categories = %d, want 2", len(cats))
	}
	if cats[0].Name != "Сэндвичи" || len(cats[0].Items) != 2 {
		t.Fatalf("unexpected first category: %+v", cats[0])
	}

	item, ok := svc.ItemByID("snd-2")
	if !ok {
		t.Fatalf("ItemByID(snd-2) not found")
	}
	if item.PriceKopecks != 25050 {
		t.Fatalf("price kopecks = %d, want 25050", item.PriceKopecks)
	}
	if item.Category != "Сэндвичи" {
		t.Fatalf("item category = %q", item.Category)
	}
}

func TestItemsByCategoryCaseInsensitive(t *testing.T) {
	svc, err := NewService(writeMenu(t, sampleMenu))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	items := svc.ItemsByCategory("напитки")
	if len(items) != 1 || items[0].ID != "drk-1" {
		t.Fatalf("unexpected items: %+v", items)
	}
	if got := svc.ItemsByCategory("Десерты"); got != nil {
		t.Fatalf("unknown category must yield nil, got %+v", got)
	}
}

func TestNewServiceBadFile(t *testing.T) {
	if _, err := NewService(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := NewService(writeMenu(t, "{not json")); err == nil {
		t.Fatalf("expected error for malformed file")
	}
}
