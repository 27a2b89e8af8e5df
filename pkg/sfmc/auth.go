package sfmc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// requestToken performs the OAuth2 client-credentials exchange against the
// tenant auth endpoint. It does not touch the token store; installing the
// returned token is the caller's responsibility. No retries happen here.
func (c *Client) requestToken(ctx context.Context) (Token, error) {
	url := fmt.Sprintf("%s/v2/token", c.endpoints.AuthBaseURL)
	c.logger.Info("Authenticating with Marketing Cloud", zap.String("url", url))

	authReq := AuthRequest{
		GrantType:    "client_credentials",
		ClientID:     c.config.ClientID,
		ClientSecret: c.config.ClientSecret,
	}
	if c.config.AccountID != "" {
		authReq.AccountID = c.config.AccountID
	}

	headers := map[string]string{
		"Content-Type": "application/json",
	}

	issuedAt := time.Now()
	resp, err := c.httpClient.Post(ctx, url, headers, authReq)
	if err != nil {
		c.logger.Error("Authentication request failed", zap.Error(err), zap.String("url", url))
		return Token{}, &AuthenticationError{Err: fmt.Errorf("authentication request failed: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("Authentication failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(resp.Body)))
		return Token{}, &AuthenticationError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	var authResp AuthResponse
	if err := json.Unmarshal(resp.Body, &authResp); err != nil {
		c.logger.Error("Failed to parse authentication response", zap.Error(err))
		return Token{}, &AuthenticationError{Err: fmt.Errorf("failed to parse authentication response: %w", err)}
	}
	if authResp.AccessToken == "" || authResp.ExpiresIn <= 0 {
		return Token{}, &AuthenticationError{Err: errors.New("access token or expiry missing in auth response")}
	}

	c.logger.Info("Successfully authenticated",
		zap.String("token_type", authResp.TokenType),
		zap.Int("expires_in", authResp.ExpiresIn))

	return Token{
		AccessToken: authResp.AccessToken,
		TokenType:   authResp.TokenType,
		ExpiresAt:   issuedAt.Add(time.Duration(authResp.ExpiresIn) * time.Second),
	}, nil
}

// authenticate forces a token exchange, installs the fresh token in the
// store, and returns it.
func (c *Client) authenticate(ctx context.Context) (Token, error) {
	tok, err := c.requestToken(ctx)
	if err != nil {
		return Token{}, err
	}
	c.tokens.set(tok)
	return tok, nil
}

// Authenticate forces a token exchange and installs the fresh token in the
// store, replacing any cached one.
func (c *Client) Authenticate(ctx context.Context) error {
	_, err := c.authenticate(ctx)
	return err
}

// ensureToken returns a usable access token, authenticating lazily when the
// cached one is missing or within the expiry skew. The refresh is serialized
// under authMu with a validity recheck, so concurrent callers share a single
// exchange.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	if tok, ok := c.tokens.get(); ok {
		c.logger.Debug("Using cached access token", zap.Duration("remaining", time.Until(tok.ExpiresAt)))
		return tok.AccessToken, nil
	}

	c.authMu.Lock()
	defer c.authMu.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	if tok, ok := c.tokens.get(); ok {
		return tok.AccessToken, nil
	}

	c.logger.Info("Access token expired or not available, authenticating")
	tok, err := c.authenticate(ctx)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}
