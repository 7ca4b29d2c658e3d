package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"cloudbase/pkg/logger"
)

type EmailExtractor func(r *http.Request) string

// EmailRateLimiter throttles password-reset style endpoints per email
// address, so a single address cannot be flooded with OTP mail.
type EmailRateLimiter struct {
	mu             sync.RWMutex
	requests       map[string][]time.Time
	limit          int
	window         time.Duration
	emailExtractor EmailExtractor
	log            *logger.Logger
	stopCh         chan struct{}
}

func NewEmailRateLimiter(limit int, window time.Duration, extractor EmailExtractor, log *logger.Logger) *EmailRateLimiter {
	limiter := &EmailRateLimiter{
		requests:       make(map[string][]time.Time),
		limit:          limit,
		window:         window,
		emailExtractor: extractor,
		log:            log,
		stopCh:         make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *EmailRateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for email, timestamps := range rl.requests {
				if len(timestamps) == 0 || time.Since(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, email)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *EmailRateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *EmailRateLimiter) Allow(email string) bool {
	if email == "" {
		return true
	}

	now := time.Now()

	rl.mu.RLock()
	timestamps := rl.requests[email]
	rl.mu.RUnlock()

	validTimestamps := make([]time.Time, 0)
	for _, ts := range timestamps {
		if now.Sub(ts) < rl.window {
			validTimestamps = append(validTimestamps, ts)
		}
	}

	if len(validTimestamps) >= rl.limit {
		return false
	}

	validTimestamps = append(validTimestamps, now)

	rl.mu.Lock()
	rl.requests[email] = validTimestamps
	rl.mu.Unlock()

	return true
}

func EmailRateLimit(limiter *EmailRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := limiter.emailExtractor(r)

			if email == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow(email) {
				rejectRateLimited(w, limiter.log, r, email)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rejectRateLimited(w http.ResponseWriter, log *logger.Logger, r *http.Request, email string) {
	requestID := ""
	if rid := r.Context().Value(RequestIDKey); rid != nil {
		requestID = rid.(string)
	}

	log.Warn("Rate limit exceeded",
		"request_id", requestID,
		"email", email,
		"path", r.URL.Path,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"message":"Rate limit exceeded"}`))
}

// BodyEmailExtractor reads the email field from a JSON request body and
// restores the body so the handler can still decode it.
func BodyEmailExtractor(r *http.Request) string {
	if r.Body == nil {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(payload.Email))
}
