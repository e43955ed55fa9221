package dynamostore

// Config holds configuration for the Store.
type Config struct {
	// Table is the DynamoDB table holding document records.
	// Default: "vellum_documents"
	Table string

	// ConstraintTable is the DynamoDB table holding unique property
	// constraint rows.
	// Default: "vellum_constraints"
	ConstraintTable string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Table:           "vellum_documents",
		ConstraintTable: "vellum_constraints",
	}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.Table == "" {
		c.Table = "vellum_documents"
	}
	if c.ConstraintTable == "" {
		c.ConstraintTable = "vellum_constraints"
	}
}
