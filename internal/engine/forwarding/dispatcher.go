package forwarding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultTimeout = 15 * time.Second

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Dispatcher posts payloads to the webhook without waiting for, retrying,
// or reporting the outcome. The client timeout bounds each delivery.
type Dispatcher struct {
	client Doer
	wg     sync.WaitGroup
}

func NewDispatcher(client Doer) *Dispatcher {
	if client == nil {
		client = NewHTTPClient(DefaultTimeout)
	}
	return &Dispatcher{client: client}
}

func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func (d *Dispatcher) Dispatch(webhookURL string, payload *Payload) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Warn().Err(err).Msg("failed to encode webhook payload")
		return
	}

	d.wg.Add(1)
	go d.deliver(webhookURL, body)
}

// Wait blocks until every delivery started so far has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) deliver(webhookURL string, body []byte) {
	defer d.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("panic", fmt.Sprint(r)).Msg("recovered from panic in webhook delivery")
		}
	}()

	req, err := http.NewRequest(http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		log.Warn().Err(err).Msg("invalid webhook request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := d.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("webhook delivery failed")
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("webhook rejected delivery")
		return
	}
	log.Debug().Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("webhook delivered")
}
