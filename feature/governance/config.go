package governance

// Config holds configuration for the downstream governance catalog client.
type Config struct {
	// BaseURL is the root URL of the governance catalog's REST API.
	BaseURL string `mapstructure:"base_url" default:"http://localhost:9090"`
	// Token is the bearer token presented on every request.
	Token string `mapstructure:"token" default:""`
	// Domain is the governance domain assets are imported into.
	Domain string `mapstructure:"domain" default:"BI Catalog"`
	// Community is the governance community owning the domain.
	Community string `mapstructure:"community" default:"Data Governance"`
	// MaxRetries bounds retry attempts for transient failures.
	MaxRetries int `mapstructure:"max_retries" default:"3"`
	// TimeoutSeconds is the per-request timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"60"`
}
