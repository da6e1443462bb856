package repositories

import (
	"context"
	"reflect"
	"testing"

	"formhook/internal/platform/models"
)

func TestFormRepository_ListAvailable(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.Exec(`
		INSERT INTO forms (id, title, status) VALUES
			(1, 'Newsletter', 'publish'),
			(2, 'Contact Us', 'publish'),
			(3, 'Beta Signup', 'draft'),
			(4, 'Apply', 'publish')
	`)
	if err != nil {
		t.Fatalf("Failed to seed forms: %v", err)
	}

	forms, err := NewFormRepository(db).ListAvailable(context.Background())
	if err != nil {
		t.Fatalf("ListAvailable() error = %v", err)
	}

	want := []models.Form{
		{ID: 4, Title: "Apply"},
		{ID: 2, Title: "Contact Us"},
		{ID: 1, Title: "Newsletter"},
	}
	if !reflect.DeepEqual(forms, want) {
		t.Errorf("Expected %v, got %v", want, forms)
	}
}

func TestFormRepository_ListAvailableEmpty(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	forms, err := NewFormRepository(db).ListAvailable(context.Background())
	if err != nil {
		t.Fatalf("ListAvailable() error = %v", err)
	}
	if forms == nil || len(forms) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", forms)
	}
}
