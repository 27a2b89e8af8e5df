package sfmc

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// DataExtensions manages Data Extension objects.
type DataExtensions struct {
	client *Client
}

// DataExtension mirrors the REST customobjects resource.
type DataExtension struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Key          string  `json:"key"`
	Description  string  `json:"description,omitempty"`
	IsActive     bool    `json:"isActive"`
	IsSendable   bool    `json:"isSendable"`
	CategoryID   int     `json:"categoryId,omitempty"`
	RowCount     int     `json:"rowCount,omitempty"`
	FieldCount   int     `json:"fieldCount,omitempty"`
	CreatedDate  APITime `json:"createdDate,omitzero"`
	ModifiedDate APITime `json:"modifiedDate,omitzero"`
}

// DataExtensionField describes one column of a Data Extension.
type DataExtensionField struct {
	Name         string `json:"name"`
	Key          string `json:"key,omitempty"`
	Type         string `json:"type"`
	MaxLength    int    `json:"maxLength,omitempty"`
	IsRequired   bool   `json:"isRequired"`
	IsPrimaryKey bool   `json:"isPrimaryKey"`
}

// CreateDataExtensionRequest is the payload for creating a Data Extension.
type CreateDataExtensionRequest struct {
	Name        string               `json:"name"`
	Key         string               `json:"key,omitempty"`
	Description string               `json:"description,omitempty"`
	IsSendable  bool                 `json:"isSendable,omitempty"`
	CategoryID  int                  `json:"categoryId,omitempty"`
	Fields      []DataExtensionField `json:"fields,omitempty"`
}

// DataExtensionKeyInfo is the property set returned by GetByKey via SOAP.
type DataExtensionKeyInfo struct {
	ObjectID                    string
	CustomerKey                 string
	Name                        string
	IsSendable                  bool
	SendableSubscriberFieldName string
}

type dataExtensionRetrieveResult struct {
	ObjectID                string `xml:"ObjectID"`
	CustomerKey             string `xml:"CustomerKey"`
	Name                    string `xml:"Name"`
	IsSendable              bool   `xml:"IsSendable"`
	SendableSubscriberField struct {
		Name string `xml:"Name"`
	} `xml:"SendableSubscriberField"`
}

type dataExtensionList struct {
	Count int             `json:"count"`
	Items []DataExtension `json:"items"`
}

type dataExtensionFieldList struct {
	Count int                  `json:"count"`
	Items []DataExtensionField `json:"items"`
}

// GetByKey retrieves a Data Extension by its CustomerKey via SOAP Retrieve.
// Returns nil when no Data Extension matches.
func (m *DataExtensions) GetByKey(ctx context.Context, key string) (*DataExtensionKeyInfo, error) {
	m.client.logger.Info("Getting data extension by key", zap.String("customer_key", key))

	body := soapEnvelope(retrieveRequest("DataExtension",
		[]string{"ObjectID", "CustomerKey", "Name", "IsSendable", "SendableSubscriberField.Name"},
		"CustomerKey", key))

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

	results, _, err := parseRetrieveResponse[dataExtensionRetrieveResult](resp.Body)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	if len(results) == 0 {
		return nil, nil
	}

	r := results[0]
	return &DataExtensionKeyInfo{
		ObjectID:                    r.ObjectID,
		CustomerKey:                 r.CustomerKey,
		Name:                        r.Name,
		IsSendable:                  r.IsSendable,
		SendableSubscriberFieldName: r.SendableSubscriberField.Name,
	}, nil
}

// GetByName retrieves Data Extensions whose names match or contain the given
// string.
func (m *DataExtensions) GetByName(ctx context.Context, name string) ([]DataExtension, error) {
	m.client.logger.Info("Searching data extensions", zap.String("name", name))

	resp, err := m.client.Execute(ctx, RequestSpec{
		Method:       http.MethodGet,
		Path:         "/data/v1/customobjects",
		QueryParams:  map[string]string{"$search": name},
		AuthRequired: true,
	})
	if err != nil {
		return nil, err
	}

	var list dataExtensionList
	if err := resp.JSON(&list); err != nil {
		return nil, &RequestError{Err: err}
	}
	return list.Items, nil
}

// GetByID retrieves a Data Extension by its unique ID.
func (m *DataExtensions) GetByID(ctx context.Context, id string) (*DataExtension, error) {
	m.client.logger.Info("Getting data extension", zap.String("data_extension_id", id))

	resp, err := m.client.Execute(ctx, RequestSpec{
		Method:       http.MethodGet,
		Path:         "/data/v1/customobjects/" + id,
		AuthRequired: true,
	})
	if err != nil {
		return nil, err
	}

	var de DataExtension
	if err := resp.JSON(&de); err != nil {
		return nil, &RequestError{Err: err}
	}
	return &de, nil
}

// GetFields retrieves the fields of the first Data Extension matching the
// given name. Returns nil when no Data Extension matches.
func (m *DataExtensions) GetFields(ctx context.Context, name string) ([]DataExtensionField, error) {
	matches, err := m.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 || matches[0].ID == "" {
		return nil, nil
	}

	resp, err := m.client.Execute(ctx, RequestSpec{
		Method:       http.MethodGet,
		Path:         "/data/v1/customobjects/" + matches[0].ID + "/fields",
		AuthRequired: true,
	})
	if err != nil {
		return nil, err
	}

	var list dataExtensionFieldList
	if err := resp.JSON(&list); err != nil {
		return nil, &RequestError{Err: err}
	}
	return list.Items, nil
}

// Create creates a new Data Extension.
func (m *DataExtensions) Create(ctx context.Context, req CreateDataExtensionRequest) (*DataExtension, error) {
	m.client.logger.Info("Creating data extension", zap.String("name", req.Name))

	resp, err := m.client.Execute(ctx, RequestSpec{
		Method:       http.MethodPost,
		Path:         "/data/v1/customobjects",
		Body:         req,
		AuthRequired: true,
	})
	if err != nil {
		return nil, err
	}

	var de DataExtension
	if err := resp.JSON(&de); err != nil {
		return nil, &RequestError{Err: err}
	}
	return &de, nil
}
