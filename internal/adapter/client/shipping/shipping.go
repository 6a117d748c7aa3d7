package shipping

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/govalues/decimal"
	"github.com/veliashev/shopcore/internal/adapter/config"
	"go.uber.org/zap"
)

// ShippingClient resolves package fees from the shipping service.
// Region fees change rarely, so responses are memoized for a short TTL
// to keep order creation off the remote hot path.
type ShippingClient struct {
	logger *zap.Logger
	host   string
	client *http.Client

	mu   sync.Mutex
	fees map[string]cachedFee
	pkgs map[uint64]cachedPackage
}

type cachedFee struct {
	fee     decimal.Decimal
	expires time.Time
}

type cachedPackage struct {
	id      uint64
	expires time.Time
}

const feeTTL = 5 * time.Minute

func NewShippingClient(cfg *config.Shipping, log *zap.Logger) (*ShippingClient, error) {
	if cfg.HostString == "" {
		return nil, fmt.Errorf("shipping service address is empty")
	}
	return &ShippingClient{
		logger: log,
		host:   cfg.HostString,
		client: &http.Client{Timeout: 5 * time.Second},
		fees:   make(map[string]cachedFee),
		pkgs:   make(map[uint64]cachedPackage),
	}, nil
}

type feeResponse struct {
	PackageID uint64  `json:"package_id"`
	Region    string  `json:"region"`
	Fee       float64 `json:"fee"`
}

func (c *ShippingClient) RegionFee(ctx context.Context, packageID uint64, region string) (decimal.Decimal, error) {
	key := fmt.Sprintf("%d/%s", packageID, region)
	c.mu.Lock()
	if cached, ok := c.fees[key]; ok && time.Now().Before(cached.expires) {
		c.mu.Unlock()
		return cached.fee, nil
	}
	c.mu.Unlock()

	requestStr := fmt.Sprintf("http://%s/api/packages/%d/fees/%s", c.host, packageID, region)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestStr, http.NoBody)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("error on %s : %w", requestStr, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("request error %s : %w", requestStr, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("unexpected status for fee request",
			zap.Uint64("package", packageID),
			zap.String("region", region),
			zap.Int("status", resp.StatusCode))
		return decimal.Decimal{}, fmt.Errorf("bad response %v for request %s", resp.StatusCode, requestStr)
	}

	var result feeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return decimal.Decimal{}, fmt.Errorf("error on response decode: %w", err)
	}
	fee, err := decimal.NewFromFloat64(result.Fee)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("error on response decode: %w", err)
	}

	c.mu.Lock()
	c.fees[key] = cachedFee{fee: fee, expires: time.Now().Add(feeTTL)}
	c.mu.Unlock()
	return fee, nil
}

type defaultPackageResponse struct {
	PackageID uint64 `json:"package_id"`
}

func (c *ShippingClient) DefaultPackage(ctx context.Context, workspaceID uint64) (uint64, error) {
	c.mu.Lock()
	if cached, ok := c.pkgs[workspaceID]; ok && time.Now().Before(cached.expires) {
		c.mu.Unlock()
		return cached.id, nil
	}
	c.mu.Unlock()

	requestStr := fmt.Sprintf("http://%s/api/workspaces/%d/default-package", c.host, workspaceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestStr, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("error on %s : %w", requestStr, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request error %s : %w", requestStr, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("bad response %v for request %s", resp.StatusCode, requestStr)
	}

	var result defaultPackageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("error on response decode: %w", err)
	}

	c.mu.Lock()
	c.pkgs[workspaceID] = cachedPackage{id: result.PackageID, expires: time.Now().Add(feeTTL)}
	c.mu.Unlock()
	return result.PackageID, nil
}
