package subsonic

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/thornwolf/navigram/internal/shared"
)

const (
	protocolVersion = "1.16.1"
	clientName      = "navigram"

	saltLength   = 6
	saltAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	statusFailed = "failed"
)

// Client issues authenticated single calls against the Subsonic REST API.
//
// Every call carries a fresh salt/token pair; nothing is retained between
// calls beyond the configured credentials.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient creates a client for the configured server. The http.Client
// defaults to one with the configured request timeout; the original service
// issued unbounded requests, which was a latent defect.
func NewClient(cfg shared.NavidromeConfig, client *http.Client, logger *log.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout()}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: client,
		logger:     logger,
	}
}

// authParams builds the per-call auth query parameters. The token is the
// md5 hex digest of password+salt; md5 is mandated by the Subsonic token
// scheme, not a local choice.
func (c *Client) authParams() url.Values {
	salt := newSalt(saltLength)
	sum := md5.Sum([]byte(c.password + salt))

	v := url.Values{}
	v.Set("u", c.username)
	v.Set("t", hex.EncodeToString(sum[:]))
	v.Set("s", salt)
	v.Set("v", protocolVersion)
	v.Set("c", clientName)
	v.Set("f", "json")
	return v
}

// newSalt returns a random lowercase-alphanumeric string of length n.
func newSalt(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = saltAlphabet[rand.IntN(len(saltAlphabet))]
	}
	return string(b)
}

// Call merges the caller params with fresh auth params, issues a single GET
// against {base}/rest/{endpoint} and unwraps the response envelope.
//
// Transport failures, timeouts and non-2xx statuses wrap [shared.ErrNetwork];
// a transported envelope with status "failed" returns the embedded
// [*APIError]. Neither is fatal: callers treat a failed call as "no data
// this call" and decide whether to continue.
func (c *Client) Call(ctx context.Context, endpoint string, params url.Values) (*Response, error) {
	query := c.authParams()
	for key, values := range params {
		for _, value := range values {
			query.Add(key, value)
		}
	}

	fullURL := fmt.Sprintf("%s/rest/%s?%s", c.baseURL, endpoint, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Log only the caller params; auth params carry the token.
	c.logger.Debug("requesting endpoint", "endpoint", endpoint, "params", params.Encode())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", shared.ErrNetwork, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: failed to decode envelope: %v", shared.ErrParse, err)
	}

	if env.Response.Status == statusFailed {
		apiErr := env.Response.Error
		if apiErr == nil {
			apiErr = &APIError{Message: "unknown error"}
		}
		c.logger.Error("API reported failure", "endpoint", endpoint, "code", apiErr.Code, "message", apiErr.Message)
		return nil, apiErr
	}

	return &env.Response, nil
}
