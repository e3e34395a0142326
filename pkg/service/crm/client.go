package crm

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/relaymill/towncrier/pkg/domain/model"
	"github.com/relaymill/towncrier/pkg/utils/safe"
)

const (
	// DefaultTimeout bounds every outbound CRM request
	DefaultTimeout = 30 * time.Second

	// sinceFormat is the compact UTC timestamp the CRM expects in the
	// "since" query parameter
	sinceFormat = "20060102150405"

	// maxErrorBody limits how much of an error response is kept for logs
	maxErrorBody = 4096
)

// client implements Service interface
type client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option is a functional option for client configuration
type Option func(*client)

// WithHTTPClient replaces the underlying HTTP client (mainly for tests)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// New creates a new CRM service against the given base URL. The API token is
// sent via basic auth as the CRM requires.
func New(baseURL, token string, opts ...Option) (Service, error) {
	if baseURL == "" {
		return nil, goerr.New("CRM base URL is required")
	}

	c := &client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// ListRecordings retrieves all activity records since the given time
func (c *client) ListRecordings(ctx context.Context, since time.Time) ([]*model.Recording, error) {
	query := url.Values{}
	query.Set("since", since.UTC().Format(sinceFormat))

	var envelope recordingsEnvelope
	if err := c.get(ctx, "recordings.xml", query, &envelope); err != nil {
		return nil, err
	}

	recordings := make([]*model.Recording, 0, len(envelope.Recordings))
	for i := range envelope.Recordings {
		rec, err := envelope.Recordings[i].toModel()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to convert recording", goerr.T(ErrTagFetch))
		}
		recordings = append(recordings, rec)
	}

	return recordings, nil
}

// GetUser retrieves the CRM user who authored a recording
func (c *client) GetUser(ctx context.Context, id int64) (*model.Author, error) {
	var user userXML
	if err := c.get(ctx, fmt.Sprintf("users/%d.xml", id), nil, &user); err != nil {
		return nil, err
	}

	return &model.Author{
		ID:   user.ID,
		Name: user.Name,
	}, nil
}

// GetSubject retrieves a subject entity from the given collection
func (c *client) GetSubject(ctx context.Context, collection string, id int64) (*model.Subject, error) {
	var subject subjectXML
	if err := c.get(ctx, fmt.Sprintf("%s/%d.xml", collection, id), nil, &subject); err != nil {
		return nil, err
	}

	return &model.Subject{
		ID:   subject.ID,
		Name: subject.Name,
	}, nil
}

// get issues a GET request against the CRM and decodes the XML response
func (c *client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + "/" + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to create CRM request", goerr.V("path", path))
	}
	if c.token != "" {
		// The CRM authenticates with the API token as basic auth user
		req.SetBasicAuth(c.token, "X")
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "CRM request failed", goerr.T(ErrTagFetch), goerr.V("path", path))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return goerr.New("unexpected status from CRM",
			goerr.T(ErrTagFetch),
			goerr.V("path", path),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)),
		)
	}

	if err := xml.NewDecoder(resp.Body).Decode(out); err != nil {
		return goerr.Wrap(err, "failed to decode CRM response", goerr.T(ErrTagFetch), goerr.V("path", path))
	}

	return nil
}
