package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURLV1 = "https://legacy.api.rentloopcrm.com/v1"
	defaultBaseURLV2 = "https://services.rentloopcrm.com"

	// Version header required on every v2 call.
	apiVersion = "2021-07-28"
)

// Generation selects which vendor API generation a request targets. The
// two generations disagree on auth headers and on where the location
// scoping id belongs.
type Generation int

const (
	GenV1 Generation = iota + 1
	GenV2
)

// APIError is returned for any non-2xx response from the CRM.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("crm api error (status %d): %s", e.Status, e.Body)
}

type Client struct {
	apiKeyV1   string
	apiKeyV2   string
	locationID string
	baseURLV1  string
	baseURLV2  string
	httpClient *http.Client
}

func NewClient(apiKeyV1, apiKeyV2, locationID string) *Client {
	return &Client{
		apiKeyV1:   apiKeyV1,
		apiKeyV2:   apiKeyV2,
		locationID: locationID,
		baseURLV1:  defaultBaseURLV1,
		baseURLV2:  defaultBaseURLV2,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetBaseURLs overrides the vendor endpoints (used in tests)
func (c *Client) SetBaseURLs(v1, v2 string) {
	c.baseURLV1 = v1
	c.baseURLV2 = v2
}

// request performs one CRM call. The location id is injected as a query
// parameter on reads and as a body field on writes (v2 only, and only
// when the caller has not already set it); v1 carries it as a header
// instead. Non-2xx responses come back as *APIError.
func (c *Client) request(ctx context.Context, gen Generation, method, path string, body interface{}) (json.RawMessage, error) {
	base := c.baseURLV2
	if gen == GenV1 {
		base = c.baseURLV1
	}

	fullURL := base + path
	if gen == GenV2 && (method == http.MethodGet || method == http.MethodDelete) {
		withLocation, err := c.injectLocationQuery(fullURL)
		if err != nil {
			return nil, err
		}
		fullURL = withLocation
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		if gen == GenV2 && (method == http.MethodPost || method == http.MethodPut) {
			data, err = c.injectLocationBody(data)
			if err != nil {
				return nil, err
			}
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	switch gen {
	case GenV1:
		req.Header.Set("Authorization", "Bearer "+c.apiKeyV1)
		req.Header.Set("Location", c.locationID)
	case GenV2:
		req.Header.Set("Authorization", "Bearer "+c.apiKeyV2)
		req.Header.Set("Version", apiVersion)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

func (c *Client) injectLocationQuery(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse url: %w", err)
	}
	q := parsed.Query()
	if q.Get("locationId") == "" {
		q.Set("locationId", c.locationID)
		parsed.RawQuery = q.Encode()
	}
	return parsed.String(), nil
}

func (c *Client) injectLocationBody(data []byte) ([]byte, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		// Non-object body, send as-is
		return data, nil
	}
	if _, ok := m["locationId"]; ok {
		return data, nil
	}
	m["locationId"] = c.locationID
	out, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return out, nil
}

// LookupContactByEmail finds a contact by exact email, or nil if none.
func (c *Client) LookupContactByEmail(ctx context.Context, email string) (*Contact, error) {
	path := "/contacts/lookup?email=" + url.QueryEscape(email)
	data, err := c.request(ctx, GenV2, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return firstContact(data)
}

// LookupContactByPhone finds a contact by E.164 phone, or nil if none.
func (c *Client) LookupContactByPhone(ctx context.Context, phone string) (*Contact, error) {
	path := "/contacts/lookup?phone=" + url.QueryEscape(phone)
	data, err := c.request(ctx, GenV2, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return firstContact(data)
}

// QueryContacts runs a free-text contact search. Matches include values
// stored in custom fields, which is what makes tenant-id lookups work.
func (c *Client) QueryContacts(ctx context.Context, query string) ([]Contact, error) {
	path := "/contacts/?query=" + url.QueryEscape(query)
	data, err := c.request(ctx, GenV2, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Contacts []Contact `json:"contacts"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse contact query response: %w", err)
	}
	return parsed.Contacts, nil
}

// UpsertContact creates or updates a contact; dedup is vendor-side.
func (c *Client) UpsertContact(ctx context.Context, contact Contact) (*Contact, error) {
	data, err := c.request(ctx, GenV2, http.MethodPost, "/contacts/upsert", contact)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Contact *Contact `json:"contact"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse contact upsert response: %w", err)
	}
	return parsed.Contact, nil
}

// SearchOpportunityByRef finds an opportunity by external reference, or
// nil if none.
func (c *Client) SearchOpportunityByRef(ctx context.Context, ref string) (*Opportunity, error) {
	path := "/opportunities/search?q=" + url.QueryEscape(ref)
	data, err := c.request(ctx, GenV2, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Opportunities []Opportunity `json:"opportunities"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse opportunity search response: %w", err)
	}
	if len(parsed.Opportunities) == 0 {
		return nil, nil
	}
	return &parsed.Opportunities[0], nil
}

// CreateOpportunity creates a pipeline opportunity.
func (c *Client) CreateOpportunity(ctx context.Context, opp Opportunity) (*Opportunity, error) {
	data, err := c.request(ctx, GenV2, http.MethodPost, "/opportunities/", opp)
	if err != nil {
		return nil, err
	}
	return parseOpportunity(data)
}

// UpdateOpportunity updates an existing opportunity by id.
func (c *Client) UpdateOpportunity(ctx context.Context, id string, opp Opportunity) (*Opportunity, error) {
	data, err := c.request(ctx, GenV2, http.MethodPut, "/opportunities/"+url.PathEscape(id), opp)
	if err != nil {
		return nil, err
	}
	return parseOpportunity(data)
}

// CreateContactV1 creates a contact through the legacy API, which wants
// custom fields as a nested key->value object.
func (c *Client) CreateContactV1(ctx context.Context, contact Contact) (*Contact, error) {
	data, err := c.request(ctx, GenV1, http.MethodPost, "/contacts/", v1ContactBody(contact))
	if err != nil {
		return nil, err
	}
	var parsed Contact
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse contact response: %w", err)
	}
	return &parsed, nil
}

// UpdateContactV1 updates a contact through the legacy API.
func (c *Client) UpdateContactV1(ctx context.Context, id string, contact Contact) (*Contact, error) {
	data, err := c.request(ctx, GenV1, http.MethodPut, "/contacts/"+url.PathEscape(id), v1ContactBody(contact))
	if err != nil {
		return nil, err
	}
	var parsed Contact
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse contact response: %w", err)
	}
	return &parsed, nil
}

// CreateOpportunityV1 creates an opportunity through the legacy
// per-pipeline endpoint.
func (c *Client) CreateOpportunityV1(ctx context.Context, pipelineID string, opp Opportunity) (*Opportunity, error) {
	path := "/pipelines/" + url.PathEscape(pipelineID) + "/opportunities"
	data, err := c.request(ctx, GenV1, http.MethodPost, path, opp)
	if err != nil {
		return nil, err
	}
	var parsed Opportunity
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse opportunity response: %w", err)
	}
	return &parsed, nil
}

func v1ContactBody(contact Contact) map[string]interface{} {
	body := map[string]interface{}{}
	if contact.Email != "" {
		body["email"] = contact.Email
	}
	if contact.FirstName != "" {
		body["firstName"] = contact.FirstName
	}
	if contact.LastName != "" {
		body["lastName"] = contact.LastName
	}
	if contact.Phone != "" {
		body["phone"] = contact.Phone
	}
	if contact.AssignedTo != "" {
		body["assignedTo"] = contact.AssignedTo
	}
	if len(contact.CustomFields) > 0 {
		body["customField"] = CustomFieldMap(contact.CustomFields)
	}
	return body
}

func firstContact(data json.RawMessage) (*Contact, error) {
	var parsed struct {
		Contacts []Contact `json:"contacts"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse contact lookup response: %w", err)
	}
	if len(parsed.Contacts) == 0 {
		return nil, nil
	}
	return &parsed.Contacts[0], nil
}

func parseOpportunity(data json.RawMessage) (*Opportunity, error) {
	var parsed struct {
		Opportunity *Opportunity `json:"opportunity"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse opportunity response: %w", err)
	}
	return parsed.Opportunity, nil
}
