package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"

	apiContext "formhook/internal/api/context"
	"formhook/internal/pkg/errors"
	"formhook/internal/platform/audit"
	"formhook/internal/platform/auth"
	"formhook/internal/platform/models"
	"formhook/internal/platform/repositories"
)

const NonceHeader = "X-Settings-Nonce"

type SettingsHandler struct {
	settings *repositories.SettingsRepository
	forms    *repositories.FormRepository
	nonces   *auth.NonceService
	audit    *audit.Logger
}

func NewSettingsHandler(settings *repositories.SettingsRepository, forms *repositories.FormRepository, nonces *auth.NonceService, auditLogger *audit.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		forms:    forms,
		nonces:   nonces,
		audit:    auditLogger,
	}
}

type SettingsResponse struct {
	WebhookURL     string        `json:"webhook_url"`
	SelectedForms  []int64       `json:"selected_forms"`
	AvailableForms []models.Form `json:"available_forms"`
	ActiveForms    []models.Form `json:"active_forms"`
	Notice         string        `json:"notice,omitempty"`
	Message        string        `json:"message,omitempty"`
	Nonce          string        `json:"nonce"`
}

type UpdateSettingsRequest struct {
	WebhookURL    string        `json:"webhook_url"`
	SelectedForms []interface{} `json:"selected_forms"`
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "")
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	if !h.nonces.Verify(r.Header.Get(NonceHeader), auth.ActionSaveSettings, claims.Username) {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeInvalidNonce, "The link you followed has expired. Reload the settings and try again.", nil)
		return
	}

	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	selected := make([]int64, 0, len(req.SelectedForms))
	for _, v := range req.SelectedForms {
		selected = append(selected, toFormID(v))
	}

	s := &models.Settings{
		WebhookURL:    SanitizeURL(req.WebhookURL),
		SelectedForms: selected,
	}
	if err := h.settings.Save(r.Context(), s); err != nil {
		log.Error().Err(err).Msg("failed to save settings")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to save settings", nil)
		return
	}

	h.audit.Log(r.Context(), r, claims.Username, audit.ActionSettingsUpdated, map[string]interface{}{
		"webhook_url":    s.WebhookURL,
		"selected_forms": s.SelectedForms,
	})

	h.respond(w, r, "Settings saved successfully!")
}

func (h *SettingsHandler) respond(w http.ResponseWriter, r *http.Request, message string) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	s, err := h.settings.Settings(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to load settings")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load settings", nil)
		return
	}

	available, err := h.forms.ListAvailable(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list forms")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list forms", nil)
		return
	}

	resp := SettingsResponse{
		WebhookURL:     s.WebhookURL,
		SelectedForms:  s.SelectedForms,
		AvailableForms: available,
		ActiveForms:    activeForms(s.SelectedForms, available),
		Message:        message,
		Nonce:          h.nonces.Create(auth.ActionSaveSettings, claims.Username),
	}
	if len(available) == 0 {
		resp.Notice = "No forms found. Please create a form in the form system first."
	}

	errors.WriteJSON(w, http.StatusOK, resp)
}

// activeForms lists the selected forms that still exist, in selection order.
func activeForms(selected []int64, available []models.Form) []models.Form {
	byID := make(map[int64]models.Form, len(available))
	for _, f := range available {
		byID[f.ID] = f
	}

	active := []models.Form{}
	for _, id := range selected {
		if f, ok := byID[id]; ok {
			active = append(active, f)
		}
	}
	return active
}

// toFormID coerces a submitted form id to an integer. Leading digits are
// kept and anything unparseable becomes 0.
func toFormID(v interface{}) int64 {
	s, ok := v.(string)
	if !ok {
		return cast.ToInt64(v)
	}

	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// SanitizeURL strips whitespace and control characters and drops URLs with a
// scheme other than http or https. Scheme-less hosts get http://. It does not
// validate the URL further.
func SanitizeURL(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return -1
		}
		return r
	}, raw)
	if cleaned == "" {
		return ""
	}

	u, err := url.Parse(cleaned)
	if err != nil {
		return ""
	}

	switch u.Scheme {
	case "http", "https":
		return cleaned
	case "":
		if u.Host == "" && u.Path != "" && !strings.HasPrefix(u.Path, "/") {
			return "http://" + cleaned
		}
		return cleaned
	default:
		return ""
	}
}
