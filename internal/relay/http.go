// Package relay implements the HTTP client for the relay server.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"hushwire/internal/domain"
)

// HTTP talks to a relay server over plain HTTP. The relay only ever handles
// prekey bundles and opaque sealed envelopes.
type HTTP struct {
	Base string
	HTTP *http.Client
}

// NewHTTP returns a client for the relay at base.
func NewHTTP(base string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{Base: base, HTTP: client}
}

// RegisterPreKeyBundle publishes the caller's bundle.
func (c *HTTP) RegisterPreKeyBundle(ctx context.Context, b domain.PreKeyBundle) error {
	return c.post(ctx, "/register", b, nil)
}

// FetchPreKeyBundle retrieves a peer's bundle. The relay pops one one-time
// prekey from the published pool, so each fetch for session initiation
// consumes at most one.
func (c *HTTP) FetchPreKeyBundle(ctx context.Context, username domain.Username) (domain.PreKeyBundle, error) {
	var out domain.PreKeyBundle
	if err := c.getJSON(ctx, "/bundle/"+url.PathEscape(username.String()), &out); err != nil {
		return domain.PreKeyBundle{}, err
	}
	return out, nil
}

// SendEnvelope posts a sealed envelope to the recipient's mailbox.
func (c *HTTP) SendEnvelope(ctx context.Context, env domain.Envelope) error {
	return c.post(ctx, "/envelope/"+url.PathEscape(env.To.String()), env, nil)
}

// FetchEnvelopes returns up to limit queued envelopes, oldest first.
func (c *HTTP) FetchEnvelopes(ctx context.Context, username domain.Username, limit int) ([]domain.Envelope, error) {
	path := "/envelope/" + url.PathEscape(username.String())
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var envs []domain.Envelope
	if err := c.getJSON(ctx, path, &envs); err != nil {
		return nil, err
	}
	return envs, nil
}

// AckEnvelopes removes the oldest count envelopes from the mailbox.
func (c *HTTP) AckEnvelopes(ctx context.Context, username domain.Username, count int) error {
	return c.post(ctx, "/envelope/"+url.PathEscape(username.String())+"/ack", struct {
		Count int `json:"count"`
	}{Count: count}, nil)
}

func (c *HTTP) post(ctx context.Context, path string, in, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return errors.Errorf("relay post %s: %s", path, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *HTTP) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return errors.Errorf("relay get %s: %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Compile-time assertion that HTTP implements domain.RelayClient.
var _ domain.RelayClient = (*HTTP)(nil)
