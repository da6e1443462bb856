package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const ActionSettingsUpdated = "settings.updated"

type AuditLog struct {
	ID        string                 `json:"id"`
	Actor     string                 `json:"actor"`
	Action    string                 `json:"action"`
	Metadata  map[string]interface{} `json:"metadata"`
	IPAddress string                 `json:"ip_address"`
	UserAgent string                 `json:"user_agent"`
	CreatedAt int64                  `json:"created_at"`
}

// Logger records administrative changes to the audit_logs table.
type Logger struct {
	db *sql.DB
}

func NewLogger(db *sql.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Log(ctx context.Context, r *http.Request, actor, action string, metadata map[string]interface{}) {
	entry := &AuditLog{
		ID:        "audit_" + uuid.New().String(),
		Actor:     actor,
		Action:    action,
		Metadata:  metadata,
		IPAddress: "unknown",
		UserAgent: "unknown",
		CreatedAt: time.Now().Unix(),
	}
	if r != nil {
		entry.IPAddress = r.RemoteAddr
		entry.UserAgent = r.UserAgent()
	}

	metaJSON, _ := json.Marshal(metadata)

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor, action, metadata, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Actor, entry.Action, string(metaJSON), entry.IPAddress, entry.UserAgent, entry.CreatedAt)
	if err != nil {
		log.Warn().Err(err).Str("action", action).Msg("failed to write audit log")
	}
}

func (l *Logger) List(ctx context.Context, limit int) ([]*AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, actor, action, metadata, ip_address, user_agent, created_at
		FROM audit_logs ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []*AuditLog{}
	for rows.Next() {
		var entry AuditLog
		var metaStr string
		if err := rows.Scan(&entry.ID, &entry.Actor, &entry.Action, &metaStr, &entry.IPAddress, &entry.UserAgent, &entry.CreatedAt); err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(metaStr), &entry.Metadata)
		logs = append(logs, &entry)
	}
	return logs, rows.Err()
}
