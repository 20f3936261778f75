package config

// Config represents the complete configuration structure
type Config struct {
	PAIA    PAIAConfig    `mapstructure:"paia"`
	Policy  PolicyConfig  `mapstructure:"policy"`
	Fees    FeesConfig    `mapstructure:"fees"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// PAIAConfig holds the PAIA server connection details and the patron
// credentials used for login
type PAIAConfig struct {
	URL            string `mapstructure:"url"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// PolicyConfig contains deployment-level normalization choices that differ
// between installations
type PolicyConfig struct {
	RenewableDefault    bool `mapstructure:"renewable_default"`
	HoldsIncludeOrdered bool `mapstructure:"holds_include_ordered"`
}

// FeesConfig contains fee normalization settings
type FeesConfig struct {
	// BracketFeeTypes lists the feetype ids whose title and due date are
	// encoded into the about field using the bracket convention
	BracketFeeTypes []string `mapstructure:"bracket_feetypes"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
