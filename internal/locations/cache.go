package locations

import (
	"time"

	"github.com/bluele/gcache"
)

const citiesKey = "cities"

// Cache holds the city list and per-city street lists for a bounded time.
// It is owned by whoever builds the Client and can be purged.
type Cache struct {
	store gcache.Cache
}

// NewCache builds an LRU cache of size entries that expire after ttl.
// A zero size or ttl falls back to 256 entries and one hour.
func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = 256
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{store: gcache.New(size).LRU().Expiration(ttl).Build()}
}

func (c *Cache) cities() ([]City, bool) {
	v, err := c.store.Get(citiesKey)
	if err != nil {
		return nil, false
	}
	cities, ok := v.([]City)
	return cities, ok
}

func (c *Cache) setCities(cities []City) {
	_ = c.store.Set(citiesKey, cities)
}

func streetsKey(city string) string {
	return "streets:" + city
}

func (c *Cache) streets(city string) ([]Street, bool) {
	v, err := c.store.Get(streetsKey(city))
	if err != nil {
		return nil, false
	}
	streets, ok := v.([]Street)
	return streets, ok
}

func (c *Cache) setStreets(city string, streets []Street) {
	_ = c.store.Set(streetsKey(city), streets)
}

// Purge drops every cached list.
func (c *Cache) Purge() {
	c.store.Purge()
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return c.store.Len(true)
}
