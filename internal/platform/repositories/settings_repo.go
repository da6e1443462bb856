package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"formhook/internal/platform/models"
)

const (
	SettingWebhookURL    = "webhook_url"
	SettingSelectedForms = "selected_forms"
)

// SettingsRepository stores the forwarding settings as name/value rows.
type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// get returns the stored value, or "" when the setting was never saved.
func (r *SettingsRepository) get(ctx context.Context, name string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE name = ?`, name).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("read setting %s: %w", name, err)
	}
	return value, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (r *SettingsRepository) set(ctx context.Context, ex execer, name, value string) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO settings (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, name, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("write setting %s: %w", name, err)
	}
	return nil
}

func (r *SettingsRepository) GetWebhookURL(ctx context.Context) (string, error) {
	return r.get(ctx, SettingWebhookURL)
}

func (r *SettingsRepository) GetSelectedFormIDs(ctx context.Context) ([]int64, error) {
	raw, err := r.get(ctx, SettingSelectedForms)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return []int64{}, nil
	}

	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decode %s: %w", SettingSelectedForms, err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

func (r *SettingsRepository) SetWebhookURL(ctx context.Context, url string) error {
	return r.set(ctx, r.db, SettingWebhookURL, url)
}

func (r *SettingsRepository) SetSelectedFormIDs(ctx context.Context, ids []int64) error {
	encoded, err := encodeIDs(ids)
	if err != nil {
		return err
	}
	return r.set(ctx, r.db, SettingSelectedForms, encoded)
}

// Save writes both settings in one transaction.
func (r *SettingsRepository) Save(ctx context.Context, s *models.Settings) error {
	encoded, err := encodeIDs(s.SelectedForms)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := r.set(ctx, tx, SettingWebhookURL, s.WebhookURL); err != nil {
		return err
	}
	if err := r.set(ctx, tx, SettingSelectedForms, encoded); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SettingsRepository) Settings(ctx context.Context) (*models.Settings, error) {
	url, err := r.GetWebhookURL(ctx)
	if err != nil {
		return nil, err
	}
	ids, err := r.GetSelectedFormIDs(ctx)
	if err != nil {
		return nil, err
	}
	return &models.Settings{WebhookURL: url, SelectedForms: ids}, nil
}

// Load implements forwarding.ConfigSource.
func (r *SettingsRepository) Load(ctx context.Context) (models.ForwardingConfig, error) {
	s, err := r.Settings(ctx)
	if err != nil {
		return models.ForwardingConfig{}, err
	}
	return models.ForwardingConfig{
		WebhookURL:      s.WebhookURL,
		SelectedFormIDs: models.NewFormSet(s.SelectedForms...),
	}, nil
}

func encodeIDs(ids []int64) (string, error) {
	if ids == nil {
		ids = []int64{}
	}
	encoded, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
