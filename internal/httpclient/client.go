package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/go-querystring/query"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/sirupsen/logrus"

	"recolector/internal/certs"
)

// RequestIDHeader correlates client and server logs.
const RequestIDHeader = "X-Request-ID"

// Credentials supplies the bearer token and reacts to its rejection. The epoch
// identifies the session that owned the token, so a stale 401 does not clear a
// newer session.
type Credentials interface {
	Token() (token string, epoch uint64)
	Revoke(epoch uint64)
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// CADir optionally adds PEM certificates to the trusted roots.
	CADir      string
	Logger     logrus.FieldLogger
	HTTPClient *http.Client
}

// Client is the single choke point for requests to the remote API.
type Client struct {
	baseURL string
	http    *http.Client
	log     logrus.FieldLogger

	mu    sync.RWMutex
	creds Credentials
}

// New builds a Client. Credentials are attached later with SetCredentials
// because the session store itself needs a client to log in.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	hc := opts.HTTPClient
	if hc == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if opts.CADir != "" {
			pool, expired, err := certs.NewCertManager(opts.CADir).Pool()
			if err != nil {
				return nil, fmt.Errorf("load ca dir: %w", err)
			}
			for _, name := range expired {
				log.WithField("cert", name).Warn("skipping expired CA certificate")
			}
			transport.TLSClientConfig = &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}
		}
		hc = &http.Client{Timeout: opts.Timeout, Transport: transport}
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    hc,
		log:     log,
	}, nil
}

// SetCredentials attaches the token source.
func (c *Client) SetCredentials(creds Credentials) {
	c.mu.Lock()
	c.creds = creds
	c.mu.Unlock()
}

func (c *Client) credentials() Credentials {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.creds
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Get issues a GET with params encoded from a url-tagged struct.
func (c *Client) Get(ctx context.Context, path string, params any, out any) error {
	return c.Do(ctx, http.MethodGet, path, params, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body any, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body any, out any) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

// Do sends one request and decodes a 2xx JSON reply into out (when non-nil).
// A 401 revokes the session that sent the request before the error is returned.
func (c *Client) Do(ctx context.Context, method, path string, params any, body any, out any) error {
	target := c.baseURL + path
	if params != nil {
		values, err := query.Values(params)
		if err != nil {
			return fmt.Errorf("encode query: %w", err)
		}
		if encoded := values.Encode(); encoded != "" {
			target += "?" + encoded
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	reqID, err := gonanoid.New()
	if err == nil {
		req.Header.Set(RequestIDHeader, reqID)
	}

	var epoch uint64
	creds := c.credentials()
	if creds != nil {
		var token string
		token, epoch = creds.Token()
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	log := c.log.WithFields(logrus.Fields{"method": method, "path": path, "request_id": reqID})
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Debug("request failed")
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: err}
	}
	log = log.WithFields(logrus.Fields{"status": resp.StatusCode, "elapsed": time.Since(start).String()})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: bodyMessage(data),
			Body:    data,
		}
		if resp.StatusCode == http.StatusUnauthorized && creds != nil {
			log.Warn("credentials rejected, revoking session")
			creds.Revoke(epoch)
		} else {
			log.Debug("request returned error status")
		}
		return apiErr
	}
	log.Debug("request done")

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
