package mawaqit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	logx "adhanclock/pkg/logx"
)

const DefaultBaseURL = "https://mawaqit.net/api"

// ClientConfig configures the directory client.
//
// Requests are paced (RatePerSec, default 2) but never retried: a failed call
// fails the command.
type ClientConfig struct {
	BaseURL    string
	Username   string
	Password   string
	Timeout    time.Duration // per request; 0 means 30s
	RatePerSec int
	HTTPClient *http.Client
}

// Mosque is one directory entry.
type Mosque struct {
	UUID         string   `json:"uuid"`
	Name         string   `json:"name,omitempty"`
	Localisation string   `json:"localisation,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("mawaqit %s: http %d", e.Op, e.Status)
	}
	return fmt.Sprintf("mawaqit %s: http %d: %s", e.Op, e.Status, e.Body)
}

var ErrNoCredentials = errors.New("mawaqit: username and password are required")

// Client talks to the mawaqit directory API.
type Client struct {
	cfg     ClientConfig
	http    *http.Client
	limiter *rate.Limiter
	log     logx.Logger

	token string
}

func NewClient(cfg ClientConfig, log logx.Logger) *Client {
	if log.IsZero() {
		log = logx.Nop()
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 2
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		cfg:     cfg,
		http:    hc,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		log:     log,
	}
}

// Login exchanges the credentials for an API token. Other calls log in lazily.
func (c *Client) Login(ctx context.Context) error {
	if strings.TrimSpace(c.cfg.Username) == "" || c.cfg.Password == "" {
		return ErrNoCredentials
	}
	req, err := c.newRequest(ctx, "/2.0/me", nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)

	var out struct {
		APIAccessToken string `json:"apiAccessToken"`
	}
	if err := c.doJSON(req, "login", &out); err != nil {
		return err
	}
	if out.APIAccessToken == "" {
		return errors.New("mawaqit login: response has no apiAccessToken")
	}
	c.token = out.APIAccessToken
	c.log.Debug("logged in", logx.String("user", c.cfg.Username))
	return nil
}

// Nearby lists mosques around a coordinate.
func (c *Client) Nearby(ctx context.Context, lat, lng float64) ([]Mosque, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	return c.search(ctx, "nearby", q)
}

// Search finds mosques by keyword.
func (c *Client) Search(ctx context.Context, keyword string) ([]Mosque, error) {
	q := url.Values{}
	q.Set("word", keyword)
	return c.search(ctx, "search", q)
}

func (c *Client) search(ctx context.Context, op string, q url.Values) ([]Mosque, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, "/2.0/mosque/search", q)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Api-Access-Token", c.token)

	var out []Mosque
	if err := c.doJSON(req, op, &out); err != nil {
		return nil, err
	}
	c.log.Debug("mosques fetched", logx.String("op", op), logx.Int("count", len(out)))
	return out, nil
}

// PrayerTimes fetches the raw schedule document of a mosque. The body is
// returned untouched so every field of the response is preserved on disk.
func (c *Client) PrayerTimes(ctx context.Context, uuid string) (json.RawMessage, error) {
	uuid = strings.TrimSpace(uuid)
	if uuid == "" {
		return nil, errors.New("mawaqit: mosque uuid is required")
	}
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, "/3.0/mosque/"+url.PathEscape(uuid)+"/times", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.token)

	var raw json.RawMessage
	if err := c.doJSON(req, "times", &raw); err != nil {
		return nil, err
	}
	if _, err := ParseDocument(raw); err != nil {
		return nil, fmt.Errorf("mawaqit times: %w", err)
	}
	return raw, nil
}

func (c *Client) ensureToken(ctx context.Context) error {
	if c.token != "" {
		return nil
	}
	return c.Login(ctx)
}

func (c *Client) newRequest(ctx context.Context, path string, q url.Values) (*http.Request, error) {
	u := c.cfg.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) doJSON(req *http.Request, op string, out any) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return err
	}
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mawaqit %s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return fmt.Errorf("mawaqit %s: read body: %w", op, err)
	}
	c.log.Debug("request done",
		logx.String("op", op),
		logx.Int("status", resp.StatusCode),
		logx.Duration("took", time.Since(start)),
	)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: op, Status: resp.StatusCode, Body: truncate(strings.TrimSpace(string(body)), 200)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("mawaqit %s: decode: %w", op, err)
	}
	return nil
}

// IndentDocument pretty-prints a raw document with two-space indentation.
func IndentDocument(raw json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func truncate(s string, maxN int) string {
	if maxN <= 0 || len(s) <= maxN {
		return s
	}
	return s[:maxN-3] + "..."
}
