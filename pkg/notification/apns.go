package notification

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"NeighborGuard/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

const (
	ProductionHost = "https://api.push.apple.com"
	SandboxHost    = "https://api.sandbox.push.apple.com"

	// provider tokens live an hour; refresh well before that
	tokenRefresh = 50 * time.Minute
)

type APNsConfig struct {
	KeyID      string
	TeamID     string
	BundleID   string
	PrivateKey []byte // PEM encoded .p8 key
	Production bool
}

type APNs struct {
	cfg     APNsConfig
	key     *ecdsa.PrivateKey
	client  *http.Client
	baseURL string
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	token    string
	issuedAt time.Time
}

type APNsOption func(*APNs)

func WithHTTPClient(c *http.Client) APNsOption { return func(a *APNs) { a.client = c } }

// WithBaseURL overrides the APNs host, e.g. for a local test server.
func WithBaseURL(u string) APNsOption { return func(a *APNs) { a.baseURL = u } }

func WithLogger(l *zap.Logger) APNsOption { return func(a *APNs) { a.logger = l } }

func withClock(now func() time.Time) APNsOption { return func(a *APNs) { a.now = now } }

func NewAPNs(cfg APNsConfig, opts ...APNsOption) (*APNs, error) {
	if cfg.KeyID == "" || cfg.TeamID == "" {
		return nil, fmt.Errorf("apns: key id and team id are required")
	}
	key, err := jwt.ParseECPrivateKeyFromPEM(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("apns: parse private key: %w", err)
	}
	a := &APNs{
		cfg:     cfg,
		key:     key,
		client:  &http.Client{Transport: &http2.Transport{}},
		baseURL: SandboxHost,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	if cfg.Production {
		a.baseURL = ProductionHost
	}
	for _, o := range opts {
		o(a)
	}
	return a, nil
}

func (a *APNs) Enabled() bool { return true }

// bearer returns the cached provider token, signing a new one when stale.
func (a *APNs) bearer() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	now := a.now()
	if a.token != "" && now.Sub(a.issuedAt) < tokenRefresh {
		return a.token, nil
	}
	t := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"iss": a.cfg.TeamID,
		"iat": now.Unix(),
	})
	t.Header["kid"] = a.cfg.KeyID
	signed, err := t.SignedString(a.key)
	if err != nil {
		return "", err
	}
	a.token, a.issuedAt = signed, now
	return signed, nil
}

type apnsError struct {
	Reason string `json:"reason"`
}

func (a *APNs) Send(ctx context.Context, token string, p *Payload) SendResult {
	bearer, err := a.bearer()
	if err != nil {
		a.logger.Error("apns token signing failed", zap.Error(err))
		return SendResult{Reason: "failed to sign provider token"}
	}
	body, err := json.Marshal(p)
	if err != nil {
		return SendResult{Reason: err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/3/device/"+token, bytes.NewReader(body))
	if err != nil {
		return SendResult{Reason: err.Error()}
	}
	req.Header.Set("authorization", "bearer "+bearer)
	req.Header.Set("apns-topic", a.cfg.BundleID)
	req.Header.Set("apns-push-type", "alert")
	req.Header.Set("apns-priority", "10")
	req.Header.Set("apns-expiration", "0")
	req.Header.Set("content-type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Warn("apns request failed", zap.String("token", shortToken(token)), zap.Error(err))
		return SendResult{Reason: err.Error()}
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode == http.StatusOK {
		return SendResult{Delivered: true, Status: resp.StatusCode}
	}
	reason := "Unknown error"
	var apiErr apnsError
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Reason != "" {
		reason = apiErr.Reason
	}
	a.logger.Warn("apns rejected push",
		zap.String("token", shortToken(token)),
		zap.Int("status", resp.StatusCode),
		zap.String("reason", reason))
	return SendResult{Status: resp.StatusCode, Reason: reason, Fatal: IsFatalReason(reason)}
}

// LoadKey reads the .p8 key from base64 text, falling back to a file path.
// Both empty yields a nil key and no error.
func LoadKey(keyBase64, keyFile string) ([]byte, error) {
	if keyBase64 != "" {
		key, err := base64.StdEncoding.DecodeString(keyBase64)
		if err == nil {
			return key, nil
		}
		if keyFile == "" {
			return nil, fmt.Errorf("apns: decode key: %w", err)
		}
	}
	if keyFile != "" {
		return os.ReadFile(keyFile)
	}
	return nil, nil
}

// NewGateway builds an APNs gateway from config, or Disabled when the
// credentials are incomplete.
func NewGateway(cfg config.PushConfig, logger *zap.Logger) Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	key, err := LoadKey(cfg.KeyBase64, cfg.KeyFile)
	if err != nil {
		logger.Warn("apns key unavailable, push disabled", zap.Error(err))
		return Disabled{}
	}
	if len(key) == 0 || cfg.KeyID == "" || cfg.TeamID == "" {
		logger.Warn("apns not configured, push disabled",
			zap.Bool("key", len(key) > 0),
			zap.Bool("key_id", cfg.KeyID != ""),
			zap.Bool("team_id", cfg.TeamID != ""))
		return Disabled{}
	}
	a, err := NewAPNs(APNsConfig{
		KeyID:      cfg.KeyID,
		TeamID:     cfg.TeamID,
		BundleID:   cfg.BundleID,
		PrivateKey: key,
		Production: cfg.Production,
	}, WithLogger(logger))
	if err != nil {
		logger.Warn("apns init failed, push disabled", zap.Error(err))
		return Disabled{}
	}
	logger.Info("apns enabled",
		zap.String("host", a.baseURL),
		zap.String("topic", cfg.BundleID),
		zap.Bool("production", cfg.Production))
	return a
}

func shortToken(t string) string {
	if len(t) > 16 {
		return t[:16] + "..."
	}
	return t
}
