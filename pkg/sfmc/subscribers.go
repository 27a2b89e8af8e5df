package sfmc

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// Subscribers manages Subscriber objects.
type Subscribers struct {
	client *Client
}

// Subscriber is the property set returned by GetByKey via SOAP. Dates keep
// the API's string form (the SOAP API omits timezones).
type Subscriber struct {
	ID               string
	CreatedDate      string
	EmailAddress     string
	SubscriberKey    string
	UnsubscribedDate string
	Status           string
}

type subscriberRetrieveResult struct {
	ID               string `xml:"ID"`
	CreatedDate      string `xml:"CreatedDate"`
	EmailAddress     string `xml:"EmailAddress"`
	SubscriberKey    string `xml:"SubscriberKey"`
	UnsubscribedDate string `xml:"UnsubscribedDate"`
	Status           string `xml:"Status"`
}

// GetByKey retrieves a Subscriber by its SubscriberKey via SOAP Retrieve.
// Returns nil when no Subscriber matches.
func (m *Subscribers) GetByKey(ctx context.Context, subscriberKey string) (*Subscriber, error) {
	m.client.logger.Info("Getting subscriber by key", zap.String("subscriber_key", subscriberKey))

	body := soapEnvelope(retrieveRequest("Subscriber",
		[]string{"ID", "CreatedDate", "EmailAddress", "SubscriberKey", "UnsubscribedDate", "Status"},
		"SubscriberKey", subscriberKey))

	resp, err := m.client.Execute(ctx, RequestSpec{
		Method:       http.MethodPost,
		Path:         soapServicePath,
		Kind:         KindSOAP,
		SOAPAction:   "Retrieve",
		Body:         body,
		AuthRequired: true,
	})
	if err != nil {
		return nil, err
	}

	results, _, err := parseRetrieveResponse[subscriberRetrieveResult](resp.Body)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	if len(results) == 0 {
		return nil, nil
	}

	r := results[0]
	return &Subscriber{
		ID:               r.ID,
		CreatedDate:      r.CreatedDate,
		EmailAddress:     r.EmailAddress,
		SubscriberKey:    r.SubscriberKey,
		UnsubscribedDate: r.UnsubscribedDate,
		Status:           r.Status,
	}, nil
}
