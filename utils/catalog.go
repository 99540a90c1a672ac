package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kvitka-shop/flower-bot/models"
)

var (
	// ErrUnavailable covers transport failures and non-2xx answers from
	// the catalog service. Callers surface it as "no data", no retries.
	ErrUnavailable = errors.New("catalog service unavailable")
	// ErrNotFound is returned for by-name and by-id lookups that miss.
	ErrNotFound = errors.New("flower not found")
)

// QuoteError is a rejected price quote. Available is -1 when the flower
// is missing from the catalog entirely.
type QuoteError struct {
	Flower    string
	Available int
}

func (e *QuoteError) Error() string {
	if e.Available < 0 {
		return fmt.Sprintf("flower %q not found", e.Flower)
	}
	return fmt.Sprintf("not enough stock for flower %q, available %d", e.Flower, e.Available)
}

// The quote endpoint reports failures through its message field only,
// so the name and available count are recovered by pattern.
var (
	quoteNotFoundRe = regexp.MustCompile(`Flower "(.+)" not found`)
	quoteStockRe    = regexp.MustCompile(`flower "(.+)"\. Available: (\d+)`)
)

type CatalogClient struct {
	BaseURL string
	Client  *http.Client
}

func NewCatalogClient() *CatalogClient {
	baseURL := os.Getenv("CATALOG_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}

	return &CatalogClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type flowersPage struct {
	Flowers      []models.Flower `json:"flowers"`
	TotalFlowers int             `json:"total_flowers"`
}

// FetchPage returns one catalog page and the total flower count.
func (c *CatalogClient) FetchPage(ctx context.Context, page, perPage int) ([]models.Flower, int, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))

	body, err := c.get(ctx, "/api/resources/all_flowers?"+query.Encode())
	if err != nil {
		return nil, 0, err
	}

	var result flowersPage
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal flowers page: %w", err)
	}

	return result.Flowers, result.TotalFlowers, nil
}

// FetchNames returns the display names of every flower in stock.
func (c *CatalogClient) FetchNames(ctx context.Context) ([]string, error) {
	body, err := c.get(ctx, "/api/resources/flower_names")
	if err != nil {
		return nil, err
	}

	var result struct {
		FlowerNames []string `json:"flower_names"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flower names: %w", err)
	}

	return result.FlowerNames, nil
}

func (c *CatalogClient) FetchByName(ctx context.Context, name string) (*models.Flower, error) {
	query := url.Values{}
	query.Set("name", name)
	return c.fetchFlower(ctx, "/api/resources/flower_by_name?"+query.Encode())
}

func (c *CatalogClient) FetchByID(ctx context.Context, id int) (*models.Flower, error) {
	query := url.Values{}
	query.Set("id", strconv.Itoa(id))
	return c.fetchFlower(ctx, "/api/resources/flower_by_id?"+query.Encode())
}

// QuotePrice validates a flower-quantity map against live inventory and
// returns the total with a per-flower breakdown. Rejections come back
// as *QuoteError naming the offending flower.
func (c *CatalogClient) QuotePrice(ctx context.Context, flowers map[string]int) (*models.PriceQuote, error) {
	payload, err := json.Marshal(map[string]interface{}{"flowers": flowers})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal quote request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"/api/resources/flower_parse_calculator", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		zap.L().Error("Catalog quote request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var quote models.PriceQuote
		if err := json.Unmarshal(bodyBytes, &quote); err != nil {
			return nil, fmt.Errorf("failed to unmarshal price quote: %w", err)
		}
		return &quote, nil

	case http.StatusNotFound, http.StatusBadRequest:
		return nil, parseQuoteError(bodyBytes)

	default:
		zap.L().Error("Catalog quote returned error status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", bodyBytes))
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
}

// PhotoURL builds the public URL for a flower photo.
func (c *CatalogClient) PhotoURL(photo string) string {
	return c.BaseURL + "/media/" + photo
}

func parseQuoteError(body []byte) error {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if m := quoteStockRe.FindStringSubmatch(payload.Message); m != nil {
		available, _ := strconv.Atoi(m[2])
		return &QuoteError{Flower: m[1], Available: available}
	}
	if m := quoteNotFoundRe.FindStringSubmatch(payload.Message); m != nil {
		return &QuoteError{Flower: m[1], Available: -1}
	}

	return fmt.Errorf("%w: %s", ErrUnavailable, payload.Message)
}

func (c *CatalogClient) fetchFlower(ctx context.Context, path string) (*models.Flower, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		zap.L().Error("Catalog request failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var flower models.Flower
		if err := json.Unmarshal(bodyBytes, &flower); err != nil {
			return nil, fmt.Errorf("failed to unmarshal flower: %w", err)
		}
		return &flower, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
}

func (c *CatalogClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		zap.L().Error("Catalog request failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		zap.L().Error("Catalog returned error status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	return bodyBytes, nil
}
