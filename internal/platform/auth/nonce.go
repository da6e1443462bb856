package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

const (
	ActionSaveSettings = "save_settings"

	// a nonce stays valid for between one and two windows
	nonceWindow = 12 * time.Hour
	nonceLength = 20
)

// NonceService issues anti-forgery tokens for admin form posts. A nonce is
// bound to an action, a user and a time window.
type NonceService struct {
	secret []byte
	now    func() time.Time
}

func NewNonceService(secret string) *NonceService {
	return &NonceService{secret: []byte(secret), now: time.Now}
}

func (s *NonceService) tick() int64 {
	return s.now().Unix() / int64(nonceWindow/time.Second)
}

func (s *NonceService) Create(action, user string) string {
	return s.sign(s.tick(), action, user)
}

// Verify accepts nonces from the current and the previous window.
func (s *NonceService) Verify(nonce, action, user string) bool {
	if nonce == "" {
		return false
	}
	tick := s.tick()
	for _, t := range []int64{tick, tick - 1} {
		if hmac.Equal([]byte(nonce), []byte(s.sign(t, action, user))) {
			return true
		}
	}
	return false
}

func (s *NonceService) sign(tick int64, action, user string) string {
	payload := []byte(strconv.FormatInt(tick, 10) + "|" + action + "|" + user)
	return Sign(s.secret, payload)[:nonceLength]
}

func Sign(secret []byte, payload []byte) string {
	h := hmac.New(sha256.New, secret)
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
