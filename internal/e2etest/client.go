package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/PuerkitoBio/goquery"
	"github.com/justinas/nosurf"
	"github.com/myrjola/reelguess/internal/errors"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client talks to the game API like a browser would, keeping cookies and the CSRF token between requests.
type Client struct {
	client    *http.Client
	url       string
	csrfToken string
}

// NewClient creates a cookie-aware HTTP client for the server at url.
func NewClient(url string) (*Client, error) {
	jar, err := newUnsafeCookieJar()
	if err != nil {
		return nil, errors.Wrap(err, "create unsafe cookie jar")
	}
	return &Client{
		client: &http.Client{Jar: jar},
		url:    url,
	}, nil
}

// WaitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	timeout := 1 * time.Second
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = http.NewRequestWithContext(
			ctx,
			http.MethodGet,
			c.url+urlPath,
			nil,
		); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = c.client.Do(req); err == nil {
			if resp.StatusCode == http.StatusOK {
				if err = resp.Body.Close(); err != nil {
					return errors.Wrap(err, "close response body")
				}
				return nil
			}
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "context cancelled")
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(100 * time.Millisecond) //nolint:mnd // 100ms
		}
	}
}

// Get fetches a URL and returns the response.
func (c *Client) Get(ctx context.Context, urlPath string) (*http.Response, error) {
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	if req, err = http.NewRequestWithContext(ctx, http.MethodGet, c.url+urlPath, nil); err != nil {
		return nil, errors.Wrap(err, "create request with context")
	}
	if resp, err = c.client.Do(req); err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	return resp, nil
}

// GetDoc fetches a URL and returns a goquery document.
func (c *Client) GetDoc(ctx context.Context, urlPath string) (*goquery.Document, error) {
	var (
		err  error
		resp *http.Response
		doc  *goquery.Document
	)
	if resp, err = c.Get(ctx, urlPath); err != nil {
		return nil, errors.Wrap(err, "client get")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if http.StatusOK != resp.StatusCode {
		return nil, errors.New("unexpected status code", slog.Int("status", resp.StatusCode))
	}
	if doc, err = goquery.NewDocumentFromReader(resp.Body); err != nil {
		return nil, errors.Wrap(err, "create document from reader")
	}
	return doc, nil
}

// Prepare loads the landing page to obtain the session cookies and the CSRF token used by the JSON API.
func (c *Client) Prepare(ctx context.Context) (*goquery.Document, error) {
	doc, err := c.GetDoc(ctx, "/")
	if err != nil {
		return nil, errors.Wrap(err, "get landing page")
	}
	if c.csrfToken, err = extractCSRFToken(doc, "/api/games"); err != nil {
		return nil, errors.Wrap(err, "extract CSRF token")
	}
	return doc, nil
}

// Do sends a JSON request and decodes the JSON response into out unless out is nil. The response status is returned
// also for non-2xx responses, which are not treated as errors.
func (c *Client) Do(ctx context.Context, method, urlPath string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, errors.Wrap(err, "encode request")
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url+urlPath, body)
	if err != nil {
		return 0, errors.Wrap(err, "create request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(nosurf.HeaderName, c.csrfToken)
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "do request", slog.String("path", urlPath))
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if out != nil && resp.StatusCode < http.StatusMultipleChoices {
		if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, errors.Wrap(err, "decode response")
		}
	}
	return resp.StatusCode, nil
}

// Post is Do with the POST method that expects one of the 2xx statuses.
func (c *Client) Post(ctx context.Context, urlPath string, in, out any) error {
	status, err := c.Do(ctx, http.MethodPost, urlPath, in, out)
	if err != nil {
		return errors.Wrap(err, "post")
	}
	if status >= http.StatusMultipleChoices {
		return errors.New("unexpected status code", slog.Int("status", status), slog.String("path", urlPath))
	}
	return nil
}

func extractCSRFToken(doc *goquery.Document, formActionURLPath string) (string, error) {
	formSelector := fmt.Sprintf("form[action='%s']", formActionURLPath)
	form := doc.Find(formSelector)
	csrfToken, ok := form.Find("input[name=csrf_token]").Attr("value")
	if !ok {
		return "", errors.New("csrf_token not found in form")
	}
	return csrfToken, nil
}
