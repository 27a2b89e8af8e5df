package sfmc

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// Automations manages Automation Studio automations.
type Automations struct {
	client *Client
}

// Automation mirrors the /automation/v1/automations resource.
type Automation struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Key          string  `json:"key,omitempty"`
	Description  string  `json:"description,omitempty"`
	Status       string  `json:"status,omitempty"`
	ModifiedDate APITime `json:"modifiedDate,omitzero"`
}

type automationList struct {
	Count int          `json:"count"`
	Page  int          `json:"page"`
	Items []Automation `json:"items"`
}

// List retrieves automations with pagination. Page and pageSize fall back to
// the API defaults when non-positive.
func (m *Automations) List(ctx context.Context, page, pageSize int) ([]Automation, error) {
	m.client.logger.Info("Listing automations", zap.Int("page", page), zap.Int("page_size", pageSize))

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}

	resp, err := m.client.Execute(ctx, RequestSpec{
		Method: http.MethodGet,
		Path:   "/automation/v1/automations",
		QueryParams: map[string]string{
			"$page":     strconv.Itoa(page),
			"$pageSize": strconv.Itoa(pageSize),
		},
		AuthRequired: true,
	})
	if err != nil {
		return nil, err
	}

	var list automationList
	if err := resp.JSON(&list); err != nil {
		return nil, &RequestError{Err: err}
	}
	return list.Items, nil
}

// GetByID retrieves a single automation.
func (m *Automations) GetByID(ctx context.Context, id string) (*Automation, error) {
	m.client.logger.Info("Getting automation", zap.String("automation_id", id))

	resp, err := m.client.Execute(ctx, RequestSpec{
		Method:       http.MethodGet,
		Path:         "/automation/v1/automations/" + id,
		AuthRequired: true,
	})
	if err != nil {
		return nil, err
	}

	var automation Automation
	if err := resp.JSON(&automation); err != nil {
		return nil, &RequestError{Err: err}
	}
	return &automation, nil
}
