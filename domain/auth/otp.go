package auth

import (
	"crypto/rand"
	"math/big"
	"strings"
	"sync"
	"time"
)

// otpTTL is how long a password reset OTP stays valid. Matches the copy in
// the reset mail.
const otpTTL = 10 * time.Minute

type otpEntry struct {
	code      string
	userID    string
	expiresAt time.Time
}

// otpStore holds outstanding password reset codes in memory, keyed by email.
// Codes are single-use; a new request replaces any outstanding one.
type otpStore struct {
	mu      sync.Mutex
	entries map[string]otpEntry
	now     func() time.Time
}

func newOTPStore() *otpStore {
	return &otpStore{
		entries: make(map[string]otpEntry),
		now:     time.Now,
	}
}

// issue creates a new OTP for the email, replacing any outstanding one.
func (s *otpStore) issue(email, userID string) string {
	code := generateOTP()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[normalizeEmail(email)] = otpEntry{
		code:      code,
		userID:    userID,
		expiresAt: s.now().Add(otpTTL),
	}
	return code
}

// consume validates and burns the OTP for the email. Returns the user id it
// was issued for, or false when the code is wrong, expired or already used.
func (s *otpStore) consume(email, code string) (string, bool) {
	key := normalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return "", false
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return "", false
	}
	if entry.code != code {
		return "", false
	}

	delete(s.entries, key)
	return entry.userID, true
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateOTP returns a 6-digit numeric code.
func generateOTP() string {
	const digits = "0123456789"
	var b strings.Builder
	for i := 0; i < 6; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			panic(err)
		}
		b.WriteByte(digits[n.Int64()])
	}
	return b.String()
}
