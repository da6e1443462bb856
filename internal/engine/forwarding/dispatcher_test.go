package forwarding

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type failingDoer struct {
	mu    sync.Mutex
	calls int
}

func (d *failingDoer) Do(req *http.Request) (*http.Response, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	return nil, errors.New("connection refused")
}

func TestDispatcher_Dispatch(t *testing.T) {
	var (
		mu          sync.Mutex
		gotMethod   string
		gotType     string
		gotBody     map[string]string
		requestSeen int
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		requestSeen++
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	payload := NewPayload()
	payload.Set("Name", "Ann")
	payload.Set(FormIDKey, "42")

	d := NewDispatcher(NewHTTPClient(time.Second))
	d.Dispatch(server.URL, payload)
	d.Wait()

	mu.Lock()
	defer mu.Unlock()
	if requestSeen != 1 {
		t.Fatalf("Expected 1 request, got %d", requestSeen)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("Expected POST, got %s", gotMethod)
	}
	if gotType != "application/json" {
		t.Errorf("Expected application/json, got %s", gotType)
	}
	if gotBody["Name"] != "Ann" || gotBody[FormIDKey] != "42" {
		t.Errorf("Unexpected body: %v", gotBody)
	}
}

func TestDispatcher_NonSuccessIsSwallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	d := NewDispatcher(NewHTTPClient(time.Second))
	d.Dispatch(server.URL, NewPayload())
	d.Wait()
}

func TestDispatcher_TransportError(t *testing.T) {
	doer := &failingDoer{}
	d := NewDispatcher(doer)

	d.Dispatch("https://hooks.example.com/catch", NewPayload())
	d.Wait()

	if doer.calls != 1 {
		t.Errorf("Expected exactly one attempt without retry, got %d", doer.calls)
	}
}

func TestDispatcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	d := NewDispatcher(NewHTTPClient(50 * time.Millisecond))

	start := time.Now()
	d.Dispatch(server.URL, NewPayload())
	d.Wait()
	if time.Since(start) > 2*time.Second {
		t.Error("Expected delivery to be abandoned after the client timeout")
	}
}

func TestDispatcher_InvalidURL(t *testing.T) {
	d := NewDispatcher(&failingDoer{})
	d.Dispatch("://not a url", NewPayload())
	d.Wait()
}

func TestNewHTTPClient_DefaultTimeout(t *testing.T) {
	if c := NewHTTPClient(0); c.Timeout != DefaultTimeout {
		t.Errorf("Expected %v, got %v", DefaultTimeout, c.Timeout)
	}
}
