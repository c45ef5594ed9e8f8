// Package geocode adapts a Nominatim-style reverse geocoding provider to
// the pipeline's standardized address. The provider is an external
// collaborator: the tracker calls Reverse outside the validator's
// synchronous mutation and only feeds the result back in.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andrevmm/ondeestou/internal/domain"
	"github.com/andrevmm/ondeestou/internal/logger"
)

// DefaultBaseURL is the public Nominatim instance. Self-hosted deployments
// override it through configuration.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// Compile-time interface check.
var _ domain.Geocoder = (*Client)(nil)

// ClientOption configures the geocoding client.
type ClientOption func(*Client)

// WithBaseURL points the client at a different Nominatim instance.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(base, "/") }
}

// WithHTTPClient substitutes the HTTP client, mostly for tests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// Client performs reverse geocoding lookups.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a reverse geocoding client.
func NewClient(log *logger.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// nominatimResponse is the subset of the /reverse payload we read.
type nominatimResponse struct {
	Error   string `json:"error"`
	Address struct {
		Road          string `json:"road"`
		Pedestrian    string `json:"pedestrian"`
		Suburb        string `json:"suburb"`
		Neighbourhood string `json:"neighbourhood"`
		CityDistrict  string `json:"city_district"`
		City          string `json:"city"`
		Town          string `json:"town"`
		Village       string `json:"village"`
		Municipality  string `json:"municipality"`
		Region        string `json:"region"`
		ISOLvl4       string `json:"ISO3166-2-lvl4"`
	} `json:"address"`
}

// Reverse resolves coordinates to a standardized address. Returns
// domain.ErrNoAddress when the provider has nothing for the point.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (domain.Address, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", fmt.Sprintf("%.7f", lat))
	q.Set("lon", fmt.Sprintf("%.7f", lon))
	q.Set("accept-language", "pt-BR")
	endpoint := c.baseURL + "/reverse?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Address{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "ondeestou/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Address{}, fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Address{}, fmt.Errorf("reverse geocode status %d", resp.StatusCode)
	}

	var payload nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Address{}, fmt.Errorf("decoding reverse geocode response: %w", err)
	}
	if payload.Error != "" {
		c.log.Debug("geocode: provider error for (%.6f, %.6f): %s", lat, lon, payload.Error)
		return domain.Address{}, domain.ErrNoAddress
	}

	addr := standardize(payload)
	if addr == (domain.Address{}) {
		return domain.Address{}, domain.ErrNoAddress
	}

	c.log.Debug("geocode: (%.6f, %.6f) -> %s / %s / %s",
		lat, lon, addr.Logradouro, addr.Bairro, addr.Municipio)
	return addr, nil
}

// standardize maps the provider's loose field set onto the three tracked
// fields plus UF. Nominatim reports the municipality under different keys
// depending on settlement size.
func standardize(p nominatimResponse) domain.Address {
	a := p.Address

	addr := domain.Address{
		Logradouro:  firstNonEmpty(a.Road, a.Pedestrian),
		Bairro:      firstNonEmpty(a.Suburb, a.Neighbourhood, a.CityDistrict),
		Municipio:   firstNonEmpty(a.City, a.Town, a.Village, a.Municipality),
		RegiaoMetro: a.Region,
	}
	if uf, ok := strings.CutPrefix(a.ISOLvl4, "BR-"); ok {
		addr.UF = uf
	}
	return addr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
