package sfmc

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// Queries manages SQL query activities.
type Queries struct {
	client *Client
}

// QueryActivity mirrors the /automation/v1/queries resource.
type QueryActivity struct {
	QueryDefinitionID string  `json:"queryDefinitionId"`
	Name              string  `json:"name"`
	Key               string  `json:"key,omitempty"`
	Description       string  `json:"description,omitempty"`
	QueryText         string  `json:"queryText,omitempty"`
	TargetName        string  `json:"targetName,omitempty"`
	TargetUpdateType  string  `json:"targetUpdateTypeName,omitempty"`
	ModifiedDate      APITime `json:"modifiedDate,omitzero"`
}

type queryActivityList struct {
	Count int             `json:"count"`
	Page  int             `json:"page"`
	Items []QueryActivity `json:"items"`
}

// List retrieves query activities with pagination.
func (m *Queries) List(ctx context.Context, page, pageSize int) ([]QueryActivity, error) {
	m.client.logger.Info("Listing query activities", zap.Int("page", page), zap.Int("page_size", pageSize))

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}

	resp, err := m.client.Execute(ctx, RequestSpec{
		Method: http.MethodGet,
		Path:   "/automation/v1/queries",
		QueryParams: map[string]string{
			"$page":     strconv.Itoa(page),
			"$pageSize": strconv.Itoa(pageSize),
		},
		AuthRequired: true,
	})
	if err != nil {
		return nil, err
	}

	var list queryActivityList
	if err := resp.JSON(&list); err != nil {
		return nil, &RequestError{Err: err}
	}
	return list.Items, nil
}

// GetByID retrieves a single query activity.
func (m *Queries) GetByID(ctx context.Context, id string) (*QueryActivity, error) {
	m.client.logger.Info("Getting query activity", zap.String("query_id", id))

	resp, err := m.client.Execute(ctx, RequestSpec{
		Method:       http.MethodGet,
		Path:         "/automation/v1/queries/" + id,
		AuthRequired: true,
	})
	if err != nil {
		return nil, err
	}

	var query QueryActivity
	if err := resp.JSON(&query); err != nil {
		return nil, &RequestError{Err: err}
	}
	return &query, nil
}
