// Package locations looks up Israeli city and street names for the
// address part of the complaint form, using the data.gov.il datastore.
package locations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	resty "gopkg.in/resty.v1"
	"kavyashar.org/intake/internal/appconf"
	"kavyashar.org/intake/internal/logging"
	"kavyashar.org/intake/internal/metrics"
)

const (
	CitiesResourceID  = "5c78e9fa-c2e2-4771-93ff-7f400a12f7ba"
	StreetsResourceID = "a7296d1a-f8c9-4b70-96c2-6ebb4352f8e3"

	MaxResults      = 50
	citiesPageSize  = 2000
	streetsPageSize = 500
	unregistered    = "לא רשום"
)

var ErrLookupFailed = errors.New("address lookup failed")

type City struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type Street struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	CityCode string `json:"cityCode"`
}

// Client queries the datastore and keeps results in a Cache.
type Client struct {
	http    *resty.Client
	baseURL string
	cache   *Cache
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewClient(cfg appconf.LocationsConfig, cache *Cache, m *metrics.Metrics) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = appconf.DefaultLocationsURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if cache == nil {
		cache = NewCache(cfg.CacheSize, cfg.CacheTTL)
	}

	httpClient := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		cache:   cache,
		metrics: m,
		logger:  slog.Default().With(slog.String("component", "locations")),
	}
}

// Cache returns the cache the client reads through.
func (c *Client) Cache() *Cache {
	return c.cache
}

// Cities returns up to MaxResults cities whose name contains query, in
// datastore order. The full list is fetched once per cache lifetime.
func (c *Client) Cities(ctx context.Context, query string) ([]City, error) {
	all, err := c.allCities(ctx)
	if err != nil {
		return nil, err
	}
	return filterLimit(all, query, func(city City) string { return city.Name }), nil
}

// IsKnownCity reports whether name is a city in the list. When the list
// cannot be loaded every name is accepted.
func (c *Client) IsKnownCity(ctx context.Context, name string) bool {
	all, err := c.allCities(ctx)
	if err != nil {
		return true
	}
	name = strings.TrimSpace(name)
	return slices.ContainsFunc(all, func(city City) bool { return city.Name == name })
}

func (c *Client) allCities(ctx context.Context) ([]City, error) {
	if cities, ok := c.cache.cities(); ok {
		c.metrics.ObserveCacheLookup("cities", true)
		return cities, nil
	}
	c.metrics.ObserveCacheLookup("cities", false)

	var records []cityRecord
	if err := c.search(ctx, CitiesResourceID, citiesPageSize, "", &records); err != nil {
		return nil, err
	}

	cities := make([]City, 0, len(records))
	for _, r := range records {
		name := strings.TrimSpace(r.Name)
		if name == "" || name == unregistered {
			continue
		}
		cities = append(cities, City{ID: r.ID, Name: name, Code: strings.TrimSpace(string(r.Code))})
	}
	c.cache.setCities(cities)
	logging.LogOperation(c.logger, "cities_loaded", slog.Int("count", len(cities)))
	return cities, nil
}

// Streets returns up to MaxResults distinct street names of city containing
// query, sorted in Hebrew order. An empty city yields no streets.
func (c *Client) Streets(ctx context.Context, city, query string) ([]Street, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return []Street{}, nil
	}

	all, ok := c.cache.streets(city)
	c.metrics.ObserveCacheLookup("streets", ok)
	if !ok {
		var records []streetRecord
		if err := c.search(ctx, StreetsResourceID, streetsPageSize, city, &records); err != nil {
			return nil, err
		}
		all = uniqueStreets(city, records)
		c.cache.setStreets(city, all)
	}
	return filterLimit(all, query, func(s Street) string { return s.Name }), nil
}

func uniqueStreets(city string, records []streetRecord) []Street {
	seen := map[string]bool{}
	streets := []Street{}
	for _, r := range records {
		name := strings.TrimSpace(r.Name)
		if name == "" || seen[name] {
			continue
		}
		if r.CityName != "" && strings.TrimSpace(r.CityName) != city {
			continue
		}
		seen[name] = true
		streets = append(streets, Street{ID: r.ID, Name: name, CityCode: strings.TrimSpace(string(r.CityCode))})
	}

	col := collate.New(language.Hebrew)
	slices.SortStableFunc(streets, func(a, b Street) int {
		return col.CompareString(a.Name, b.Name)
	})
	return streets
}

func filterLimit[T any](items []T, query string, name func(T) string) []T {
	query = strings.TrimSpace(query)
	out := make([]T, 0, min(len(items), MaxResults))
	for _, item := range items {
		if len(out) == MaxResults {
			break
		}
		if query == "" || strings.Contains(name(item), query) {
			out = append(out, item)
		}
	}
	return out
}

type datastoreResponse struct {
	Success bool `json:"success"`
	Result  struct {
		Records json.RawMessage `json:"records"`
	} `json:"result"`
}

type cityRecord struct {
	ID   int      `json:"_id"`
	Code flexCode `json:"סמל_ישוב"`
	Name string   `json:"שם_ישוב"`
}

type streetRecord struct {
	ID       int      `json:"_id"`
	CityCode flexCode `json:"סמל_ישוב"`
	CityName string   `json:"שם_ישוב"`
	Name     string   `json:"שם_רחוב"`
}

// flexCode accepts the settlement code as either a JSON string or number;
// the two resources disagree.
type flexCode string

func (f *flexCode) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexCode(n.String())
	return nil
}

func (c *Client) search(ctx context.Context, resourceID string, limit int, q string, records any) error {
	params := map[string]string{
		"resource_id": resourceID,
		"limit":       strconv.Itoa(limit),
	}
	if q != "" {
		params["q"] = q
	}

	resp, err := c.http.R().SetContext(ctx).SetQueryParams(params).Get(c.baseURL)
	if err != nil {
		logging.LogError(c.logger, "datastore request failed", err, slog.String("resource_id", resourceID))
		return fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: datastore returned status %d", ErrLookupFailed, resp.StatusCode())
	}

	var body datastoreResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return fmt.Errorf("%w: decoding datastore response: %w", ErrLookupFailed, err)
	}
	if !body.Success {
		return fmt.Errorf("%w: datastore reported failure", ErrLookupFailed)
	}
	if len(body.Result.Records) == 0 {
		return nil
	}
	if err := json.Unmarshal(body.Result.Records, records); err != nil {
		return fmt.Errorf("%w: decoding datastore records: %w", ErrLookupFailed, err)
	}
	return nil
}
