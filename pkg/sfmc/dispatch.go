package sfmc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/mparkin/sfmc-go/pkg/httpclient"
	"go.uber.org/zap"
)

// RequestKind selects which base service URL a request targets.
type RequestKind int

const (
	KindREST RequestKind = iota
	KindSOAP
)

// RequestSpec describes a single API call. Specs are built by object
// managers (or callers directly) and consumed by Execute.
type RequestSpec struct {
	Method string

	// Path is resolved against the REST or SOAP base URL unless it is
	// already an absolute URL.
	Path string

	Kind        RequestKind
	Headers     map[string]string
	QueryParams map[string]string
	Body        any

	// SOAPAction names the operation for SOAP requests.
	SOAPAction string

	// AuthRequired attaches a Bearer token and enables the 401/403
	// refresh-and-retry behavior. Public endpoints set it to false.
	AuthRequired bool
}

// Execute dispatches a request and classifies the result. It is the single
// choke point all object managers go through.
//
// When the spec requires auth and the cached token is missing or expired,
// the client authenticates first. A 401 or 403 response is treated as a
// token-expiry failure: the token is refreshed exactly once and the request
// replayed once; if it is still unauthorized, an AuthenticationError is
// returned. Other non-2xx statuses and transport failures surface as
// RequestError. There is no further automatic retry.
func (c *Client) Execute(ctx context.Context, spec RequestSpec) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	reqURL, err := c.resolveURL(spec)
	if err != nil {
		return nil, &RequestError{Err: err}
	}

	// Reader bodies are buffered up front so a token-refresh replay sends
	// the full payload again.
	if r, ok := spec.Body.(io.Reader); ok {
		buf, err := io.ReadAll(r)
		if err != nil {
			return nil, &RequestError{Err: fmt.Errorf("failed to read request body: %w", err)}
		}
		spec.Body = buf
	}

	requestID := uuid.NewString()
	logger := c.logger.With(
		zap.String("request_id", requestID),
		zap.String("method", spec.Method),
		zap.String("url", reqURL))

	headers := map[string]string{
		"X-Request-ID": requestID,
	}
	for k, v := range spec.Headers {
		headers[k] = v
	}
	if spec.Kind == KindSOAP {
		if headers["Content-Type"] == "" {
			headers["Content-Type"] = "text/xml"
		}
		if spec.SOAPAction != "" {
			headers["SOAPAction"] = spec.SOAPAction
		}
	}

	if spec.AuthRequired {
		token, err := c.ensureToken(ctx)
		if err != nil {
			return nil, err
		}
		headers["Authorization"] = "Bearer " + token
	}

	resp, err := c.do(ctx, spec.Method, reqURL, headers, spec.Body, logger)
	if err != nil {
		return nil, err
	}

	if spec.AuthRequired && isTokenExpiryStatus(resp.StatusCode) {
		// The server no longer accepts the current token: refresh once and
		// replay the original request with the new one.
		logger.Warn("Token rejected, re-authenticating", zap.Int("status_code", resp.StatusCode))
		c.tokens.invalidate()
		tok, err := c.authenticate(ctx)
		if err != nil {
			return nil, err
		}
		headers["Authorization"] = "Bearer " + tok.AccessToken

		resp, err = c.do(ctx, spec.Method, reqURL, headers, spec.Body, logger)
		if err != nil {
			return nil, err
		}
		if isTokenExpiryStatus(resp.StatusCode) {
			logger.Error("Request still unauthorized after token refresh",
				zap.Int("status_code", resp.StatusCode))
			return nil, &AuthenticationError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
		}
	}

	return classify(resp, logger)
}

func (c *Client) do(ctx context.Context, method, reqURL string, headers map[string]string, body any, logger *zap.Logger) (*Response, error) {
	resp, err := c.httpClient.Do(httpclient.RequestOptions{
		Method:  method,
		URL:     reqURL,
		Headers: headers,
		Body:    body,
		Context: ctx,
	})
	if err != nil {
		logger.Error("Request failed", zap.Error(err))
		return nil, &RequestError{Err: err}
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
	}, nil
}

// isTokenExpiryStatus reports whether a status means "current token is no
// longer accepted", as opposed to an ordinary request failure.
func isTokenExpiryStatus(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

func classify(resp *Response, logger *zap.Logger) (*Response, error) {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		logger.Debug("Request successful", zap.Int("status_code", resp.StatusCode))
		return resp, nil
	}
	logger.Error("Request failed",
		zap.Int("status_code", resp.StatusCode),
		zap.String("response", string(resp.Body)))
	return nil, &RequestError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
}

func (c *Client) resolveURL(spec RequestSpec) (string, error) {
	raw := spec.Path
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		base := c.endpoints.RestBaseURL
		if spec.Kind == KindSOAP {
			base = c.endpoints.SoapBaseURL
		}
		raw = strings.TrimRight(base, "/") + "/" + strings.TrimLeft(raw, "/")
	}
	if len(spec.QueryParams) == 0 {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("failed to parse request URL: %w", err)
	}
	q := u.Query()
	for k, v := range spec.QueryParams {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
