package retail

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

	"go.uber.org/zap"

	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/invoicing"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/sales"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/shared"
)

// maxResponseSize is the maximum allowed response size from the POS API
// (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Client reads orders, payments and reference data from the POS API.
// Fulfillment records are joined onto the order lines here, so the rest
// of the pipeline only ever sees complete orders.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new POS API client with the given configuration.
func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		logger: logger,
	}, nil
}

// OrderByID fetches a single order with its fulfillment data joined on.
func (c *Client) OrderByID(ctx context.Context, orderID string) (*sales.SaleOrder, error) {
	body, err := c.doGet(ctx, "api/v1/orders/"+url.PathEscape(orderID), nil)
	if err != nil {
		return nil, err
	}

	var envelope posObjectEnvelope[posOrder]
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("retail: failed to parse order response: %w", err)
	}
	if envelope.Data == nil {
		return nil, shared.ErrNotFound
	}

	order := envelope.Data.toDomainOrder()
	if err := c.joinShipments(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// OrdersByDateRange fetches all orders in [from, to], walking the POS
// pagination until the last page.
func (c *Client) OrdersByDateRange(ctx context.Context, from, to time.Time) ([]sales.SaleOrder, error) {
	var orders []sales.SaleOrder
	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("from", from.Format(posTimeLayout))
		query.Set("to", to.Format(posTimeLayout))
		query.Set("page", strconv.Itoa(page))
		query.Set("pageSize", strconv.Itoa(c.config.PageSize))

		body, err := c.doGet(ctx, "api/v1/orders", query)
		if err != nil {
			return nil, err
		}

		var envelope posListEnvelope[posOrder]
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, fmt.Errorf("retail: failed to parse order list response: %w", err)
		}

		for i := range envelope.Data {
			order := envelope.Data[i].toDomainOrder()
			if err := c.joinShipments(ctx, order); err != nil {
				return nil, err
			}
			orders = append(orders, *order)
		}
		if !envelope.HasMore || len(envelope.Data) == 0 {
			break
		}
	}
	return orders, nil
}

// ByOrderID fetches the payment records captured for an order.
func (c *Client) ByOrderID(ctx context.Context, orderID string) ([]sales.PaymentRecord, error) {
	body, err := c.doGet(ctx, "api/v1/orders/"+url.PathEscape(orderID)+"/payments", nil)
	if err != nil {
		return nil, err
	}

	var envelope posListEnvelope[posPayment]
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("retail: failed to parse payment response: %w", err)
	}

	records := make([]sales.PaymentRecord, 0, len(envelope.Data))
	for _, p := range envelope.Data {
		records = append(records, sales.PaymentRecord{
			OrderID:    p.OrderID,
			MethodCode: p.MethodCode,
			MethodName: p.MethodName,
			Amount:     p.Amount,
		})
	}
	return records, nil
}

// ByItemCode fetches one item master entry.
func (c *Client) ByItemCode(ctx context.Context, code string) (*invoicing.CatalogItem, error) {
	body, err := c.doGet(ctx, "api/v1/items/"+url.PathEscape(code), nil)
	if err != nil {
		return nil, err
	}

	var envelope posObjectEnvelope[posItem]
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("retail: failed to parse item response: %w", err)
	}
	if envelope.Data == nil {
		return nil, shared.ErrNotFound
	}
	return envelope.Data.toCatalogItem(), nil
}

// ByBranchCode fetches one branch master entry.
func (c *Client) ByBranchCode(ctx context.Context, code string) (*invoicing.Department, error) {
	body, err := c.doGet(ctx, "api/v1/branches/"+url.PathEscape(code), nil)
	if err != nil {
		return nil, err
	}

	var envelope posObjectEnvelope[posBranch]
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("retail: failed to parse branch response: %w", err)
	}
	if envelope.Data == nil {
		return nil, shared.ErrNotFound
	}
	return envelope.Data.toDepartment(), nil
}

// joinShipments loads the order's stock-movement records and attaches
// them to the matching lines, one record per line in item-code order.
func (c *Client) joinShipments(ctx context.Context, order *sales.SaleOrder) error {
	body, err := c.doGet(ctx, "api/v1/orders/"+url.PathEscape(order.OrderID)+"/shipments", nil)
	if err != nil {
		return err
	}

	var envelope posListEnvelope[posShipment]
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("retail: failed to parse shipment response: %w", err)
	}
	if len(envelope.Data) == 0 {
		return nil
	}

	pending := make(map[string][]posShipment)
	for _, s := range envelope.Data {
		pending[s.ItemCode] = append(pending[s.ItemCode], s)
	}

	for i := range order.Lines {
		line := &order.Lines[i]
		queue := pending[line.ItemCode]
		if len(queue) == 0 {
			continue
		}
		shipment := queue[0]
		pending[line.ItemCode] = queue[1:]

		qty := shipment.Quantity
		line.FulfilledQuantity = &qty
		line.MovementWarehouse = shipment.WarehouseCode
		if t, err := time.Parse(posTimeLayout, shipment.ShippedAt); err == nil {
			line.FulfilledDate = &t
		}
	}
	return nil
}

// doGet performs a GET request against the POS API.
func (c *Client) doGet(ctx context.Context, path string, query url.Values) ([]byte, error) {
	target := strings.TrimSuffix(c.config.BaseURL, "/") + "/" + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("retail: failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrExternalService, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("retail: failed to read response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, shared.ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: pos api returned HTTP %d", shared.ErrExternalService, resp.StatusCode)
	}
	return body, nil
}

// Interface guards
var (
	_ sales.OrderSource          = (*Client)(nil)
	_ sales.PaymentRecordSource  = (*Client)(nil)
	_ invoicing.CatalogLookup    = (*Client)(nil)
	_ invoicing.DepartmentLookup = (*Client)(nil)
)
