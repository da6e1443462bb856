package forwarding

import (
	"context"
	"fmt"

	"formhook/internal/platform/models"
	"github.com/rs/zerolog/log"
)

// ConfigSource supplies the forwarding settings current at submission time.
type ConfigSource interface {
	Load(ctx context.Context) (models.ForwardingConfig, error)
}

type Sender interface {
	Dispatch(webhookURL string, payload *Payload)
}

// Forwarder is the entry point the host calls for every completed submission.
type Forwarder struct {
	config ConfigSource
	sender Sender
}

func NewForwarder(config ConfigSource, sender Sender) *Forwarder {
	return &Forwarder{config: config, sender: sender}
}

// OnSubmission reads the current settings and forwards the event when its
// form is selected. Nothing is returned; failures never reach the host.
func (f *Forwarder) OnSubmission(ctx context.Context, event models.SubmissionEvent) {
	cfg, err := f.config.Load(ctx)
	if err != nil {
		log.Error().Err(err).Str("form_id", event.Form.ID.String()).Msg("failed to load forwarding settings")
		return
	}
	f.Forward(event, cfg)
}

// Forward applies cfg to a single event.
func (f *Forwarder) Forward(event models.SubmissionEvent, cfg models.ForwardingConfig) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("panic", fmt.Sprint(r)).Str("form_id", event.Form.ID.String()).Msg("recovered from panic while forwarding submission")
		}
	}()

	if !ShouldForward(cfg, event.Form.ID) {
		return
	}

	payload := BuildPayload(event)
	f.sender.Dispatch(cfg.WebhookURL, payload)

	log.Debug().
		Str("form_id", event.Form.ID.String()).
		Str("entry_id", event.EntryID.String()).
		Int("fields", payload.Len()).
		Msg("submission forwarded")
}
