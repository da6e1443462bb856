package forwarding

import "formhook/internal/platform/models"

// ShouldForward reports whether a submission from formID goes to the webhook.
// Forms are opt-in: nothing is forwarded until a form is selected and a URL is set.
func ShouldForward(cfg models.ForwardingConfig, formID models.ID) bool {
	if cfg.SelectedFormIDs.Len() == 0 {
		return false
	}

	id, ok := formID.Int64()
	if !ok || !cfg.SelectedFormIDs.Contains(id) {
		return false
	}

	return cfg.WebhookURL != ""
}
