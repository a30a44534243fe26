package source

// Config holds configuration for the source catalog client.
type Config struct {
	// BaseURL is the root URL of the source catalog's REST API.
	BaseURL string `mapstructure:"base_url" default:"http://localhost:8000"`
	// Token is the bearer token presented on every request.
	Token string `mapstructure:"token" default:""`
	// PageSize is the number of records requested per page.
	PageSize int `mapstructure:"page_size" default:"100"`
	// MaxRetries bounds retry attempts for transient failures.
	MaxRetries int `mapstructure:"max_retries" default:"3"`
	// TimeoutSeconds is the per-request timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
