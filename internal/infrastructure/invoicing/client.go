package invoicing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ardash/backend/internal/domain/ledger"
)

// maxResponseSize is the maximum allowed response size from the invoicing API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Client talks to the upstream invoicing system's REST API. It implements
// the domain's InvoiceSource port.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a new invoicing API client with the given configuration
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// FetchInvoicesPage returns up to pageSize outstanding invoices with an ID
// strictly greater than afterID, ordered by ID ascending. The filter keeps
// fully paid invoices out of the mirror entirely.
func (c *Client) FetchInvoicesPage(ctx context.Context, afterID int64, pageSize int) (ledger.InvoicePage, error) {
	filter := fmt.Sprintf("AmountRemaining gt 0 and InvoiceID gt %d", afterID)
	query := url.Values{}
	query.Set("$filter", filter)
	query.Set("$orderby", "InvoiceID")
	query.Set("$top", strconv.Itoa(pageSize))

	body, err := c.doRequest(ctx, "/api/v1/invoices", query)
	if err != nil {
		return ledger.InvoicePage{}, err
	}

	var resp invoiceListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ledger.InvoicePage{}, fmt.Errorf("%w: failed to parse invoice list: %v", ledger.ErrSourceUnavailable, err)
	}

	invoices := make([]ledger.Invoice, 0, len(resp.Items))
	for _, dto := range resp.Items {
		// Rows without a usable external ID cannot be mirrored
		if dto.InvoiceID <= 0 {
			continue
		}
		invoices = append(invoices, dto.toDomain())
	}

	// FetchedCount carries the raw row count so a dropped row cannot make a
	// full page look short to the paginator
	return ledger.InvoicePage{Invoices: invoices, FetchedCount: len(resp.Items)}, nil
}

// FetchContacts resolves a batch of contact IDs to contact records using the
// contact endpoint's OR-filter syntax. Unknown IDs are absent from the result.
func (c *Client) FetchContacts(ctx context.Context, contactIDs []int64) (map[int64]ledger.Contact, error) {
	if len(contactIDs) == 0 {
		return map[int64]ledger.Contact{}, nil
	}

	terms := make([]string, len(contactIDs))
	for i, id := range contactIDs {
		terms[i] = fmt.Sprintf("ContactID eq %d", id)
	}
	query := url.Values{}
	query.Set("$filter", strings.Join(terms, " or "))

	body, err := c.doRequest(ctx, "/api/v1/contacts", query)
	if err != nil {
		return nil, err
	}

	var resp contactListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse contact list: %v", ledger.ErrSourceUnavailable, err)
	}

	contacts := make(map[int64]ledger.Contact, len(resp.Items))
	for _, dto := range resp.Items {
		if dto.ContactID <= 0 {
			continue
		}
		contacts[dto.ContactID] = ledger.Contact{
			ContactID: dto.ContactID,
			Name:      dto.name(),
			Email:     dto.Email,
		}
	}

	return contacts, nil
}

// doRequest performs a GET against the invoicing API
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	endpoint := strings.TrimRight(c.config.BaseURL, "/") + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("invoicing: failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", c.config.APIKey)
	if c.config.CompanyID != "" {
		req.Header.Set("X-Company-Id", c.config.CompanyID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ledger.ErrSourceUnavailable, err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", ledger.ErrSourceUnavailable, resp.StatusCode)
	}

	return body, nil
}

// Ensure Client implements the InvoiceSource port
var _ ledger.InvoiceSource = (*Client)(nil)
