// Package catalogfeed loads the product catalog from a paginated HTTP feed.
package catalogfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"shopcart/internal/config"
	"shopcart/internal/domain/catalog"
	"shopcart/pkg/logger"
)

type Client struct {
	httpClient *http.Client
	cfg        config.CatalogConfig
	logger     logger.Logger
}

func NewClient(cfg config.CatalogConfig, log logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		logger: log,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
			},
		},
	}
}

type productDTO struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type productsResponse struct {
	Data       []productDTO `json:"data"`
	TotalPages int          `json:"total_pages"`
}

// FetchProducts walks every page of {base}/products. Products with an empty id,
// a negative price or an id already seen are skipped.
func (c *Client) FetchProducts(ctx context.Context) ([]catalog.Product, error) {
	if strings.TrimSpace(c.cfg.FeedURL) == "" {
		return nil, fmt.Errorf("catalog feed url is empty")
	}
	base, err := url.Parse(c.cfg.FeedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog feed url: %w", err)
	}
	pageSize := c.cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	products := make([]catalog.Product, 0)
	seen := make(map[string]struct{})
	page, totalPages := 1, 1

	for page <= totalPages {
		body, err := c.fetchPage(ctx, base, page, pageSize)
		if err != nil {
			return nil, err
		}
		if len(body.Data) == 0 {
			break
		}

		for _, dto := range body.Data {
			p, err := catalog.NewProduct(strings.TrimSpace(dto.ID), strings.TrimSpace(dto.Name), dto.Price)
			if err != nil {
				c.logger.Warn("Skipping invalid feed product", logger.String("product_id", dto.ID), logger.Error(err))
				continue
			}
			if _, dup := seen[p.ID]; dup {
				c.logger.Warn("Skipping duplicate feed product", logger.String("product_id", p.ID))
				continue
			}
			seen[p.ID] = struct{}{}
			products = append(products, p)
		}

		if body.TotalPages > 0 {
			totalPages = body.TotalPages
		}
		page++
	}

	c.logger.Info("Catalog feed loaded",
		logger.Int("products", len(products)),
		logger.Int("pages", page-1),
	)
	return products, nil
}

func (c *Client) fetchPage(ctx context.Context, base *url.URL, page, pageSize int) (*productsResponse, error) {
	u := *base
	u.Path = strings.TrimRight(base.Path, "/") + "/products"
	q := u.Query()
	q.Set("page_number", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call catalog feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Catalog feed returned an error",
			logger.Int("status", resp.StatusCode),
			logger.Int("page", page),
		)
		return nil, fmt.Errorf("catalog feed status %d", resp.StatusCode)
	}

	var body productsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &body, nil
}
