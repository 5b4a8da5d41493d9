// Package verification talks to the external national ID registry.
package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnavailable means the registry could not give an answer: it timed out,
// was unreachable, failed, or replied with something unreadable.
var ErrUnavailable = errors.New("national ID registry unavailable")

const placeholder = "{national_id}"

// Result is the registry's answer for one identifier
type Result struct {
	Valid     bool
	FirstName string
	LastName  string
	Message   string
}

// Verifier confirms a national ID against an authoritative source
type Verifier interface {
	Verify(ctx context.Context, nationalID string) (*Result, error)
}

// RegistryClient queries an HTTP registry. The endpoint either contains a
// {national_id} placeholder or receives the value as a national_id query
// parameter.
type RegistryClient struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
}

// NewRegistryClient creates a client whose every lookup is bounded by timeout
func NewRegistryClient(endpoint string, timeout time.Duration) *RegistryClient {
	return &RegistryClient{
		endpoint: endpoint,
		timeout:  timeout,
		client:   &http.Client{},
	}
}

// Verify looks the identifier up. A definitive "not valid" answer is a
// Result with Valid=false and a nil error; anything that prevents an answer
// wraps ErrUnavailable.
func (c *RegistryClient) Verify(ctx context.Context, nationalID string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.lookupURL(nationalID), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "sportclub-registration/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: registry returned status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrUnavailable, err)
	}

	result, err := parseResponse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return result, nil
}

func (c *RegistryClient) lookupURL(nationalID string) string {
	if strings.Contains(c.endpoint, placeholder) {
		return strings.ReplaceAll(c.endpoint, placeholder, url.PathEscape(nationalID))
	}
	joiner := "?"
	if strings.Contains(c.endpoint, "?") {
		joiner = "&"
	}
	return c.endpoint + joiner + url.Values{"national_id": []string{nationalID}}.Encode()
}

type registryResponse struct {
	Valid     *bool  `json:"valid"`
	IsValid   *bool  `json:"is_valid"`
	Status    string `json:"status"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Message   string `json:"message"`
	Error     string `json:"error"`
}

// parseResponse reads valid, then is_valid, then a textual status
func parseResponse(body []byte) (*Result, error) {
	var payload registryResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("invalid JSON response: %v", err)
	}

	var valid *bool
	switch {
	case payload.Valid != nil:
		valid = payload.Valid
	case payload.IsValid != nil:
		valid = payload.IsValid
	case strings.TrimSpace(payload.Status) != "":
		v := false
		switch strings.ToLower(strings.TrimSpace(payload.Status)) {
		case "ok", "valid", "true", "1", "yes":
			v = true
		}
		valid = &v
	}
	if valid == nil {
		return nil, errors.New("response carries no verdict")
	}

	message := payload.Message
	if message == "" {
		message = payload.Error
	}

	return &Result{
		Valid:     *valid,
		FirstName: strings.TrimSpace(payload.FirstName),
		LastName:  strings.TrimSpace(payload.LastName),
		Message:   message,
	}, nil
}

// FormatOnlyVerifier accepts every identifier that passed local validation.
// It is used when no registry endpoint is configured.
type FormatOnlyVerifier struct{}

// NewFormatOnlyVerifier logs that registry checks are disabled
func NewFormatOnlyVerifier() *FormatOnlyVerifier {
	log.Println("National ID registry disabled: VERIFICATION_URL not configured, only local checks apply")
	return &FormatOnlyVerifier{}
}

func (FormatOnlyVerifier) Verify(ctx context.Context, nationalID string) (*Result, error) {
	return &Result{Valid: true}, nil
}
