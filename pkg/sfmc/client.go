// Package sfmc provides a client for the Salesforce Marketing Cloud
// (Engagement) REST and SOAP APIs.
//
// The client handles OAuth2 client-credentials authentication, in-memory
// token caching with expiry-aware refresh, and request dispatch with a single
// re-authentication retry on 401/403. Object managers (data extensions,
// subscribers, automations, queries) are thin typed wrappers that translate
// method calls into REST or SOAP requests and funnel them through Execute.
//
// Each Client owns its own credentials, endpoints, and token store; there is
// no process-wide state shared between instances.
package sfmc

import (
	"sync"

	"github.com/mparkin/sfmc-go/pkg/config"
	"github.com/mparkin/sfmc-go/pkg/httpclient"
	"go.uber.org/zap"
)

// Client is the Marketing Cloud API client.
type Client struct {
	config     *config.Config
	endpoints  Endpoints
	httpClient *httpclient.Client
	tokens     *tokenStore
	logger     *zap.Logger

	// authMu serializes lazy token refresh so concurrent requests that
	// find the token invalid perform a single exchange.
	authMu sync.Mutex

	// Managers, lazily initialized.
	dataExtensions *DataExtensions
	subscribers    *Subscribers
	automations    *Automations
	queries        *Queries
}

// New creates a client from explicit parameters merged over process-wide
// configuration; explicit parameters win. Pass a nil Config to rely on
// parameters alone. Uses the default production logger.
func New(params config.Params, processCfg *config.Config) (*Client, error) {
	logger, _ := zap.NewProduction()
	return NewWithLogger(params, processCfg, logger)
}

// NewWithLogger creates a client with a custom logger.
func NewWithLogger(params config.Params, processCfg *config.Config, logger *zap.Logger) (*Client, error) {
	cfg, err := config.Resolve(params, processCfg)
	if err != nil {
		return nil, err
	}
	return &Client{
		config:     cfg,
		endpoints:  endpointsFor(cfg),
		httpClient: httpclient.NewWithLogger(logger),
		tokens:     &tokenStore{},
		logger:     logger,
	}, nil
}

// Endpoints returns the resolved base service URLs for this client.
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// DataExtensions returns the Data Extension manager.
func (c *Client) DataExtensions() *DataExtensions {
	if c.dataExtensions == nil {
		c.dataExtensions = &DataExtensions{client: c}
	}
	return c.dataExtensions
}

// Subscribers returns the Subscriber manager.
func (c *Client) Subscribers() *Subscribers {
	if c.subscribers == nil {
		c.subscribers = &Subscribers{client: c}
	}
	return c.subscribers
}

// Automations returns the Automation manager.
func (c *Client) Automations() *Automations {
	if c.automations == nil {
		c.automations = &Automations{client: c}
	}
	return c.automations
}

// Queries returns the Query activity manager.
func (c *Client) Queries() *Queries {
	if c.queries == nil {
		c.queries = &Queries{client: c}
	}
	return c.queries
}
