// Package postal looks up Brazilian postal codes (CEP) for professional
// studio addresses.
package postal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// ErrNotFound is returned when the postal code does not exist.
var ErrNotFound = errors.New("postal code not found")

// ErrInvalidCode is returned for malformed postal codes.
var ErrInvalidCode = errors.New("postal code must be 8 digits")

// Address is the resolved street address for a postal code.
type Address struct {
	PostalCode   string `json:"cep"`
	Street       string `json:"logradouro"`
	Neighborhood string `json:"bairro"`
	City         string `json:"localidade"`
	State        string `json:"uf"`
	Erro         bool   `json:"erro,omitempty"`
}

// Client queries a ViaCEP-compatible API with optional Redis caching.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter

	redis    *redis.Client
	cacheTTL time.Duration
}

// NewClient constructs a postal lookup client. The public API tolerates
// a modest request rate, so lookups are throttled client-side.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(5), 10),
	}
}

// UseRedisCache configures optional Redis caching for lookups.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// Lookup resolves a postal code to an address. Codes may carry the
// usual 01001-000 hyphenation.
func (c *Client) Lookup(ctx context.Context, code string) (*Address, error) {
	normalized, err := normalize(code)
	if err != nil {
		return nil, err
	}

	cacheKey := "cep:" + normalized
	var addr Address
	if c.readCache(ctx, cacheKey, &addr) {
		return &addr, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/ws/%s/json/", c.baseURL, url.PathEscape(normalized))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("postal lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		return nil, ErrInvalidCode
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("postal lookup: http %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&addr); err != nil {
		return nil, fmt.Errorf("postal lookup: decode: %w", err)
	}
	// ViaCEP answers 200 with {"erro": true} for unknown codes.
	if addr.Erro {
		return nil, ErrNotFound
	}

	c.writeCache(ctx, cacheKey, addr)
	return &addr, nil
}

func normalize(code string) (string, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(code), "-", "")
	if len(cleaned) != 8 {
		return "", fmt.Errorf("%q: %w", code, ErrInvalidCode)
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%q: %w", code, ErrInvalidCode)
		}
	}
	return cleaned, nil
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), out) == nil
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.cacheTTL).Err()
}
