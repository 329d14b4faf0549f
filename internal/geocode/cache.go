package geocode

// Cache remembers resolved locations for the lifetime of one run, including
// locations that did not resolve.
type Cache struct {
	points map[string]*Point
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{points: make(map[string]*Point)}
}

// Get returns the cached point for key and whether key was cached at all.
// A cached miss returns (nil, true).
func (c *Cache) Get(key string) (*Point, bool) {
	p, ok := c.points[key]
	return p, ok
}

// Set stores p, which may be nil to record a miss.
func (c *Cache) Set(key string, p *Point) {
	c.points[key] = p
}

// Size returns the number of cached entries
func (c *Cache) Size() int {
	return len(c.points)
}
