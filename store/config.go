package store

// Config holds table naming shared by the persistent backends.
type Config struct {
	// TablePrefix is prepended to every entity table name.
	// Default: "" (no prefix)
	TablePrefix string

	// UniqueTable is the name of the unique constraints table.
	// Default: "catalog_unique_constraints"
	UniqueTable string
}

// DefaultConfig returns sensible defaults for a single deployment.
func DefaultConfig() Config {
	return Config{
		UniqueTable: "catalog_unique_constraints",
	}
}

// Validate fills in missing values.
func (c *Config) Validate() {
	if c.UniqueTable == "" {
		c.UniqueTable = c.TablePrefix + "catalog_unique_constraints"
	}
}

// Table returns the physical name for a logical table.
func (c Config) Table(name string) string {
	return c.TablePrefix + name
}
