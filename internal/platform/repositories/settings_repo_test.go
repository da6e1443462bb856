package repositories

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/mattn/go-sqlite3"

	"formhook/internal/platform/models"
)

const selectSetting = `SELECT value FROM settings WHERE name = ?`

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	// every connection to :memory: is a new database
	db.SetMaxOpenConns(1)

	query := `
	CREATE TABLE settings (
		name TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE forms (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		status TEXT NOT NULL
	);
	`
	if _, err := db.Exec(query); err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}
	return db
}

func TestSettingsRepository_Defaults(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(selectSetting)).
		WithArgs(SettingWebhookURL).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(selectSetting)).
		WithArgs(SettingSelectedForms).
		WillReturnError(sql.ErrNoRows)

	repo := NewSettingsRepository(db)
	cfg, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.WebhookURL != "" || cfg.SelectedFormIDs.Len() != 0 {
		t.Errorf("Expected empty config, got %+v", cfg)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %s", err)
	}
}

func TestSettingsRepository_Load(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(selectSetting)).
		WithArgs(SettingWebhookURL).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("https://hooks.example.com/catch/1"))
	mock.ExpectQuery(regexp.QuoteMeta(selectSetting)).
		WithArgs(SettingSelectedForms).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("[3,42]"))

	cfg, err := NewSettingsRepository(db).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.WebhookURL != "https://hooks.example.com/catch/1" {
		t.Errorf("Unexpected URL %s", cfg.WebhookURL)
	}
	if !cfg.SelectedFormIDs.Contains(42) || !cfg.SelectedFormIDs.Contains(3) || cfg.SelectedFormIDs.Len() != 2 {
		t.Errorf("Unexpected selection %v", cfg.SelectedFormIDs)
	}
}

func TestSettingsRepository_DatabaseError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(selectSetting)).
		WithArgs(SettingWebhookURL).
		WillReturnError(errors.New("disk I/O error"))

	if _, err := NewSettingsRepository(db).Load(context.Background()); err == nil {
		t.Error("Expected error, got nil")
	}
}

func TestSettingsRepository_CorruptSelection(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(selectSetting)).
		WithArgs(SettingSelectedForms).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("not-json"))

	if _, err := NewSettingsRepository(db).GetSelectedFormIDs(context.Background()); err == nil {
		t.Error("Expected decode error, got nil")
	}
}

func TestSettingsRepository_SetWebhookURL(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO settings").
		WithArgs(SettingWebhookURL, "https://hooks.example.com", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := NewSettingsRepository(db).SetWebhookURL(context.Background(), "https://hooks.example.com"); err != nil {
		t.Fatalf("SetWebhookURL() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %s", err)
	}
}

func TestSettingsRepository_SaveRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO settings").
		WithArgs(SettingWebhookURL, "https://hooks.example.com", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO settings").
		WithArgs(SettingSelectedForms, "[1]", sqlmock.AnyArg()).
		WillReturnError(errors.New("constraint failed"))
	mock.ExpectRollback()

	err = NewSettingsRepository(db).Save(context.Background(), &models.Settings{
		WebhookURL:    "https://hooks.example.com",
		SelectedForms: []int64{1},
	})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %s", err)
	}
}

func TestSettingsRepository_SaveAndReload(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	repo := NewSettingsRepository(db)

	if err := repo.Save(ctx, &models.Settings{WebhookURL: "https://a.example.com", SelectedForms: []int64{5, 9}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := repo.Save(ctx, &models.Settings{WebhookURL: "https://b.example.com", SelectedForms: nil}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	want := &models.Settings{WebhookURL: "https://b.example.com", SelectedForms: []int64{}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %+v, got %+v", want, got)
	}

	if err := repo.SetSelectedFormIDs(ctx, []int64{42}); err != nil {
		t.Fatalf("SetSelectedFormIDs() error = %v", err)
	}
	ids, err := repo.GetSelectedFormIDs(ctx)
	if err != nil {
		t.Fatalf("GetSelectedFormIDs() error = %v", err)
	}
	if !reflect.DeepEqual(ids, []int64{42}) {
		t.Errorf("Expected [42], got %v", ids)
	}
}
