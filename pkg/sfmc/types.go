package sfmc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// AuthRequest is the OAuth client-credentials token request body.
type AuthRequest struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	AccountID    string `json:"account_id,omitempty"`
}

// AuthResponse is the token endpoint response.
type AuthResponse struct {
	AccessToken     string `json:"access_token"`
	TokenType       string `json:"token_type"`
	ExpiresIn       int    `json:"expires_in"`
	Scope           string `json:"scope,omitempty"`
	RestInstanceURL string `json:"rest_instance_url,omitempty"`
	SoapInstanceURL string `json:"soap_instance_url,omitempty"`
}

// Response is the outcome of a dispatched request.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to parse response body: %w", err)
	}
	return nil
}

// APITime handles Marketing Cloud date formats. The REST API frequently
// returns timestamps without a timezone (e.g. "2020-09-09T04:04:02.257").
type APITime struct {
	time.Time
}

var apiTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func (t *APITime) UnmarshalJSON(data []byte) error {
	var timeStr string
	if err := json.Unmarshal(data, &timeStr); err != nil {
		return err
	}
	if timeStr == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range apiTimeLayouts {
		if parsed, err := time.Parse(layout, timeStr); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unable to parse time string: %s", timeStr)
}

func (t APITime) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}
