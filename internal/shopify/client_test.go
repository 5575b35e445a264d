package shopify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/eczema-mitten/mittenpost/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		errMsg  string
		wantErr bool
	}{
		{
			name: "valid config",
			config: Config{
				ShopDomain:  "eczema-mitten.myshopify.com",
				AccessToken: "shpat_test",
			},
			wantErr: false,
		},
		{
			name:    "missing domain",
			config:  Config{AccessToken: "shpat_test"},
			wantErr: true,
			errMsg:  "shop domain is required",
		},
		{
			name:    "missing token",
			config:  Config{ShopDomain: "eczema-mitten.myshopify.com"},
			wantErr: true,
			errMsg:  "access token is required",
		},
		{
			name: "bare domain",
			config: Config{
				ShopDomain:  "eczema-mitten",
				AccessToken: "shpat_test",
			},
			wantErr: true,
			errMsg:  "invalid shop domain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
		})
	}
}

const sampleOrderJSON = `{
	"orders": [
		{
			"id": 5001,
			"name": "#1001",
			"email": "jo@example.com",
			"financial_status": "paid",
			"processed_at": "2024-03-01T10:00:00+08:00",
			"currency": "SGD",
			"line_items": [
				{"title": "Cotton Mitten - S (150-160cm)", "quantity": 1, "price": "29.90"},
				{"title": "Tencel Mitten - M (160-170cm)", "quantity": 2, "price": "35.90"}
			],
			"shipping_address": {
				"name": "Jo Tan",
				"address1": "235 Choa Chu Kang Central",
				"address2": "#07-12",
				"city": "Singapore",
				"zip": "689693",
				"province": "",
				"province_code": "",
				"country_code": "SG",
				"phone": "91234567"
			}
		},
		{
			"id": 5002,
			"name": "#1002",
			"email": "digital@example.com",
			"financial_status": "paid",
			"line_items": [
				{"title": "Gift Card", "quantity": 1, "price": "50.00"}
			],
			"shipping_address": null
		}
	]
}`

// testClient points a client at a httptest server.
func testClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient(Config{
		ShopDomain:  "eczema-mitten.myshopify.com",
		AccessToken: "shpat_test",
	})
	require.NoError(t, err)
	client.baseURL = server.URL + "/admin/api/" + defaultAPIVersion
	client.httpClient = server.Client()
	return client
}

func TestGetOrders(t *testing.T) {
	var gotToken string
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleOrderJSON)
	}))
	defer server.Close()

	client := testClient(t, server)
	since := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rows, err := client.GetOrders(context.Background(), since)
	require.NoError(t, err)

	assert.Equal(t, "shpat_test", gotToken)
	assert.Contains(t, gotQuery, "financial_status=paid")
	assert.Contains(t, gotQuery, "created_at_min=2024-03-01")

	// Two line items flatten to two rows; the address-less order is skipped.
	require.Len(t, rows, 2)
	assert.Equal(t, "#1001", rows[0].Name)
	assert.Equal(t, "1001", rows[0].Number())
	assert.Equal(t, "Cotton Mitten - S (150-160cm)", rows[0].Item.Name)
	assert.InDelta(t, 29.90, rows[0].Item.Price, 0.001)
	assert.Equal(t, "SG", rows[0].Shipping.Country)
	assert.Equal(t, "#1001", rows[1].Name)
	assert.Equal(t, 2, rows[1].Item.Quantity)
	assert.NotEmpty(t, rows[0].Hash)
}

func TestGetOrders_Pagination(t *testing.T) {
	var pages []string
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages = append(pages, r.URL.Query().Get("page_info"))
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page_info") == "" {
			w.Header().Set("Link", fmt.Sprintf(`<%s/admin/api/2024-07/orders.json?limit=250&page_info=cursor2>; rel="next"`, server.URL))
			fmt.Fprint(w, sampleOrderJSON)
			return
		}
		fmt.Fprint(w, `{"orders": []}`)
	}))
	defer server.Close()

	client := testClient(t, server)
	rows, err := client.GetOrders(context.Background(), time.Time{})
	require.NoError(t, err)

	require.Len(t, pages, 2)
	assert.Empty(t, pages[0])
	assert.Equal(t, "cursor2", pages[1])
	assert.Len(t, rows, 2)
}

func TestGetOrders_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := testClient(t, server)
	_, err := client.GetOrders(context.Background(), time.Time{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrRateLimit)
}

func TestGetOrders_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"errors": "invalid token"}`)
	}))
	defer server.Close()

	client := testClient(t, server)
	_, err := client.GetOrders(context.Background(), time.Time{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "invalid token")
}

func TestNextPageInfo(t *testing.T) {
	tests := []struct {
		name string
		link string
		want string
	}{
		{
			name: "next only",
			link: `<https://shop.myshopify.com/admin/api/2024-07/orders.json?limit=250&page_info=abc123>; rel="next"`,
			want: "abc123",
		},
		{
			name: "previous and next",
			link: `<https://shop.myshopify.com/admin/api/2024-07/orders.json?page_info=prev>; rel="previous", <https://shop.myshopify.com/admin/api/2024-07/orders.json?page_info=next456>; rel="next"`,
			want: "next456",
		},
		{
			name: "previous only",
			link: `<https://shop.myshopify.com/admin/api/2024-07/orders.json?page_info=prev>; rel="previous"`,
			want: "",
		},
		{
			name: "empty",
			link: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextPageInfo(tt.link))
		})
	}
}

func TestGetOrders_CursorPageDropsFilters(t *testing.T) {
	client, err := NewClient(Config{
		ShopDomain:  "eczema-mitten.myshopify.com",
		AccessToken: "shpat_test",
	})
	require.NoError(t, err)

	u, err := client.ordersURL(time.Now(), "cursor9")
	require.NoError(t, err)
	assert.Contains(t, u, "page_info=cursor9")
	assert.NotContains(t, u, "created_at_min")
	assert.NotContains(t, u, "financial_status")
	assert.True(t, strings.Contains(u, "limit=250"))
}
