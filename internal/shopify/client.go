package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/eczema-mitten/mittenpost/internal/common"
	"github.com/eczema-mitten/mittenpost/internal/model"
)

const defaultAPIVersion = "2024-07"

// Config holds Shopify Admin API credentials.
type Config struct {
	ShopDomain  string // e.g. eczema-mitten.myshopify.com
	AccessToken string // Admin API access token (shpat_...)
	APIVersion  string
	Currency    string // expected shop currency, warn on mismatch
}

// Validate checks that the configuration is complete.
func (c *Config) Validate() error {
	if c.ShopDomain == "" {
		return fmt.Errorf("shopify shop domain is required")
	}
	if c.AccessToken == "" {
		return fmt.Errorf("shopify access token is required")
	}
	if !strings.Contains(c.ShopDomain, ".") {
		return fmt.Errorf("invalid shop domain %q (want shop.myshopify.com)", c.ShopDomain)
	}
	return nil
}

// Client fetches orders from the Shopify Admin REST API. It implements the
// service.OrderSource interface.
type Client struct {
	config     Config
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Shopify Admin API client.
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrMissingConfig, err)
	}
	if config.APIVersion == "" {
		config.APIVersion = defaultAPIVersion
	}
	if config.Currency == "" {
		config.Currency = "SGD"
	}

	return &Client{
		config:  config,
		baseURL: fmt.Sprintf("https://%s/admin/api/%s", config.ShopDomain, config.APIVersion),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Shopify Admin API response types.
type ordersResponse struct {
	Orders []apiOrder `json:"orders"`
}

type apiOrder struct {
	ShippingAddress *apiAddress   `json:"shipping_address"`
	Name            string        `json:"name"`
	Email           string        `json:"email"`
	FinancialStatus string        `json:"financial_status"`
	ProcessedAt     string        `json:"processed_at"`
	Currency        string        `json:"currency"`
	LineItems       []apiLineItem `json:"line_items"`
	ID              int64         `json:"id"`
}

type apiLineItem struct {
	Title    string `json:"title"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
}

type apiAddress struct {
	Name         string `json:"name"`
	Address1     string `json:"address1"`
	Address2     string `json:"address2"`
	City         string `json:"city"`
	Zip          string `json:"zip"`
	Province     string `json:"province"`
	ProvinceCode string `json:"province_code"`
	CountryCode  string `json:"country_code"`
	Phone        string `json:"phone"`
}

// GetOrders fetches paid orders created at or after since, flattened to one
// row per line item so API fetches and CSV imports feed the same pipeline.
func (c *Client) GetOrders(ctx context.Context, since time.Time) ([]model.OrderRow, error) {
	var rows []model.OrderRow
	var skippedNoAddress int

	pageInfo := ""
	for page := 1; ; page++ {
		u, err := c.ordersURL(since, pageInfo)
		if err != nil {
			return nil, err
		}

		resp, err := c.fetchPage(ctx, u)
		if err != nil {
			return nil, err
		}

		for _, order := range resp.orders {
			if order.ShippingAddress == nil {
				skippedNoAddress++
				slog.Warn("Order has no shipping address, skipped",
					"order", order.Name)
				continue
			}
			if order.Currency != "" && order.Currency != c.config.Currency {
				slog.Warn("Order priced in unexpected currency",
					"order", order.Name,
					"currency", order.Currency,
					"expected", c.config.Currency)
			}
			rows = append(rows, convertOrder(order)...)
		}

		slog.Debug("Fetched order page",
			"page", page,
			"orders", len(resp.orders))

		pageInfo = resp.nextPageInfo
		if pageInfo == "" {
			break
		}
	}

	slog.Info("Fetched orders from Shopify",
		"rows", len(rows),
		"skipped_no_address", skippedNoAddress,
		"since", since.Format("2006-01-02"))

	return rows, nil
}

type ordersPage struct {
	orders       []apiOrder
	nextPageInfo string
}

func (c *Client) ordersURL(since time.Time, pageInfo string) (string, error) {
	u, err := url.Parse(c.baseURL + "/orders.json")
	if err != nil {
		return "", fmt.Errorf("failed to parse API URL: %w", err)
	}

	q := u.Query()
	q.Set("limit", "250")
	if pageInfo != "" {
		// Cursor pages reject every filter except limit.
		q.Set("page_info", pageInfo)
	} else {
		q.Set("status", "any")
		q.Set("financial_status", "paid")
		if !since.IsZero() {
			q.Set("created_at_min", since.UTC().Format(time.RFC3339))
		}
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (c *Client) fetchPage(ctx context.Context, pageURL string) (*ordersPage, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.config.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrShopifyConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: shopify API throttled", common.ErrRateLimit)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("shopify API error: %d - %s", resp.StatusCode, string(body))
	}

	var decoded ordersResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode orders response: %w", err)
	}

	return &ordersPage{
		orders:       decoded.Orders,
		nextPageInfo: nextPageInfo(resp.Header.Get("Link")),
	}, nil
}

// linkNextRegex pulls the page_info cursor out of the rel="next" entry of a
// Shopify Link header.
var linkNextRegex = regexp.MustCompile(`<[^>]*[?&]page_info=([^&>]+)[^>]*>;\s*rel="next"`)

func nextPageInfo(link string) string {
	if link == "" {
		return ""
	}
	match := linkNextRegex.FindStringSubmatch(link)
	if match == nil {
		return ""
	}
	return match[1]
}

// convertOrder flattens an API order into export-shaped rows, one per line
// item, matching the columns of a CSV export.
func convertOrder(order apiOrder) []model.OrderRow {
	addr := order.ShippingAddress

	rows := make([]model.OrderRow, 0, len(order.LineItems))
	for _, item := range order.LineItems {
		row := model.OrderRow{
			Name:            order.Name,
			ID:              fmt.Sprintf("%d", order.ID),
			Email:           order.Email,
			FinancialStatus: order.FinancialStatus,
			PaidAt:          order.ProcessedAt,
			Item: model.LineItem{
				Name:     item.Title,
				Quantity: item.Quantity,
				Price:    parsePrice(item.Price),
			},
			Shipping: model.Address{
				Name:         addr.Name,
				Line1:        addr.Address1,
				Line2:        addr.Address2,
				City:         addr.City,
				Zip:          addr.Zip,
				Province:     addr.ProvinceCode,
				ProvinceName: addr.Province,
				Country:      addr.CountryCode,
				Phone:        addr.Phone,
			},
		}
		if row.Item.Quantity < 1 {
			row.Item.Quantity = 1
		}
		row.Hash = row.GenerateHash()
		rows = append(rows, row)
	}

	return rows
}
