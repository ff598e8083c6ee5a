package magisterium

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL   = "https://www.magisterium.com/api/v1/chat/completions"
	DefaultUserAgent = "magisterium-client/1.0"
	DefaultTimeout   = 30 * time.Second

	// BurpProxyURL is the fixed local intercepting proxy used when proxy
	// routing is enabled.
	BurpProxyURL = "http://localhost:8080"
)

// Client sends one-shot chat completion requests to the Magisterium API
// and renders the outcome. Build it once per invocation; it is not
// mutated afterwards.
type Client struct {
	apiKey      string
	baseURL     string
	userAgent   string
	timeout     time.Duration
	insecure    bool
	proxied     bool
	httpClient  *http.Client
	output      io.Writer
	errorStream io.Writer
	log         *logrus.Logger
}

// ClientOption configures the Client to meet various requirements, such as
// custom endpoints, output handling, or transport tweaks.
type ClientOption func(*Client) *Client

// WithAPIKey uses the provided key for authentication instead of the
// MAGISTERIUM_API_KEY environment variable.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) *Client {
		c.apiKey = key
		return c
	}
}

// WithBaseURL points the client at a different chat completions endpoint.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) *Client {
		c.baseURL = u
		return c
	}
}

// WithUserAgent sets the User-Agent header sent with the request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) *Client {
		c.userAgent = ua
		return c
	}
}

// WithTimeout bounds the whole request, connection included.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) *Client {
		c.timeout = d
		return c
	}
}

// WithInsecureTLS disables TLS certificate verification.
func WithInsecureTLS() ClientOption {
	return func(c *Client) *Client {
		c.insecure = true
		return c
	}
}

// WithProxy routes traffic through the local Burp Suite proxy. Orthogonal
// to WithInsecureTLS; both may be set.
func WithProxy() ClientOption {
	return func(c *Client) *Client {
		c.proxied = true
		return c
	}
}

// WithHTTPClient substitutes the underlying HTTP client, bypassing the
// timeout, TLS, and proxy options.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) *Client {
		c.httpClient = h
		return c
	}
}

// WithOutput allows customizing the output/error streams, making the
// client adaptable to tests and alternative frontends.
func WithOutput(output, err io.Writer) ClientOption {
	return func(c *Client) *Client {
		c.output = output
		c.errorStream = err
		return c
	}
}

// WithVerbose enables debug logging of request and response metadata.
func WithVerbose(verbose bool) ClientOption {
	return func(c *Client) *Client {
		if verbose {
			c.log.SetLevel(logrus.DebugLevel)
		}
		return c
	}
}

// NewClient initializes the Client with the desired options. The API key
// falls back to the MAGISTERIUM_API_KEY environment variable; a missing
// key fails here, before any network call can happen.
func NewClient(opts ...ClientOption) (*Client, error) {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	c := &Client{
		baseURL:     DefaultBaseURL,
		userAgent:   DefaultUserAgent,
		timeout:     DefaultTimeout,
		output:      os.Stdout,
		errorStream: os.Stderr,
		log:         log,
	}
	for _, opt := range opts {
		c = opt(c)
	}
	if c.apiKey == "" {
		c.apiKey = os.Getenv("MAGISTERIUM_API_KEY")
	}
	if c.apiKey == "" {
		return nil, &APIError{
			Kind:    MissingAPIKey,
			Message: "MAGISTERIUM_API_KEY environment variable not set",
		}
	}
	c.log.SetOutput(c.errorStream)
	if c.httpClient == nil {
		c.httpClient = newHTTPClient(c.timeout, c.insecure, c.proxied)
	}
	return c, nil
}

func newHTTPClient(timeout time.Duration, insecure, proxied bool) *http.Client {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	if proxied {
		proxy, _ := url.Parse(BurpProxyURL)
		transport.Proxy = http.ProxyURL(proxy)
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// Ask sends a single user message and returns the interpreted completion.
func (c *Client) Ask(ctx context.Context, message string, opts ...CompletionOption) (Completion, error) {
	req, err := NewChatRequest(message, opts...)
	if err != nil {
		return Completion{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.CreateChatCompletion(ctx, req)
}

// CreateChatCompletion performs the one blocking HTTP POST and classifies
// the result. The response body is released on every path.
func (c *Client) CreateChatCompletion(ctx context.Context, req ChatRequest) (Completion, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Completion{}, &APIError{
			Kind:    InvalidConfiguration,
			Message: fmt.Sprintf("could not encode request body: %v", err),
		}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return Completion{}, &APIError{
			Kind:    InvalidConfiguration,
			Message: fmt.Sprintf("invalid request: %v", err),
		}
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	c.log.WithFields(logrus.Fields{
		"url":     c.baseURL,
		"model":   req.Model,
		"timeout": c.timeout,
	}).Debug("sending chat completion request")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Completion{}, c.transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Completion{}, &APIError{
			Kind:    ConnectionFailed,
			Message: "Connection lost while reading the response. Please check your internet connection and try again.",
		}
	}

	c.log.WithFields(logrus.Fields{
		"status":  resp.StatusCode,
		"elapsed": time.Since(start),
		"bytes":   len(raw),
	}).Debug("received response")

	if resp.StatusCode != http.StatusOK {
		return Completion{}, parseAPIError(resp.StatusCode, raw)
	}
	return parseCompletion(raw, req.ReturnRelatedQuestions)
}

// transportError maps low-level transport failures onto the error
// taxonomy so callers never have to inspect net or tls errors themselves.
func (c *Client) transportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &APIError{
			Kind:    TimedOut,
			Message: fmt.Sprintf("Request timed out after %v. Please try again or increase the timeout value.", c.timeout),
		}
	}
	var certVerifyErr *tls.CertificateVerificationError
	var unknownAuthErr x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	if errors.As(err, &certVerifyErr) || errors.As(err, &unknownAuthErr) || errors.As(err, &hostnameErr) {
		return &APIError{
			Kind:    TLSVerificationFailed,
			Message: "TLS certificate verification failed. If you trust this endpoint, retry with verification disabled.",
		}
	}
	return &APIError{
		Kind:    ConnectionFailed,
		Message: "Failed to connect to API endpoint. Please check your internet connection and the API URL.",
	}
}
