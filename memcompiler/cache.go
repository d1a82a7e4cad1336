package memcompiler

// Key identifies one SRAM configuration in the results cache. Banks is the
// bank count of the request, which may not be a power of two.
type Key struct {
	TechnologyNM int
	SizeBytes    int
	WordBytes    int
	Ports        int
	Banks        int
}

// Record holds everything that one tool invocation reports about an SRAM
// configuration. Energies are in pJ and the area is in um^2.
type Record struct {
	Read  float64 `json:"read"`
	Write float64 `json:"write"`
	Idle  float64 `json:"idle"`
	Area  float64 `json:"area"`
}

// Field returns the value for an action, or for "area".
func (r Record) Field(action string) (float64, bool) {
	switch action {
	case "read":
		return r.Read, true
	case "write":
		return r.Write, true
	case "idle":
		return r.Idle, true
	case "area":
		return r.Area, true
	default:
		return 0, false
	}
}

// ResultCache keeps the records of the configurations that the tool has
// already characterized. Records are only added as a whole.
type ResultCache struct {
	records map[Key]Record
}

// NewResultCache creates an empty cache.
func NewResultCache() *ResultCache {
	return &ResultCache{records: make(map[Key]Record)}
}

// Lookup returns the record of a configuration.
func (c *ResultCache) Lookup(key Key) (Record, bool) {
	r, ok := c.records[key]
	return r, ok
}

// Populate stores the record of a configuration.
func (c *ResultCache) Populate(key Key, record Record) {
	c.records[key] = record
}

// Len returns the number of configurations in the cache.
func (c *ResultCache) Len() int {
	return len(c.records)
}
