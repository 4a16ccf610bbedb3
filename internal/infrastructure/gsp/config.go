package gsp

import (
	"strings"
	"time"

	"github.com/erp/einvoice/internal/domain/einvoice"
)

const (
	DefaultAuthPath         = "/gsp/authenticate"
	DefaultEnhancedAuthPath = "/eivital/v1.04/auth"
	DefaultGenerateIRNPath  = "/eicore/v1.03/Invoice"
	DefaultCancelIRNPath    = "/eicore/v1.03/Invoice/Cancel"
	DefaultIRNByDocPath     = "/eicore/v1.03/Invoice/irnbydocdetails"
	DefaultTimeout          = 30 * time.Second
)

// Config holds the GSP endpoint and deployment credentials
type Config struct {
	BaseURL string
	// ClientID and ClientSecret identify the deployment to the authenticate endpoint
	ClientID     string
	ClientSecret string
	// Username and Password are presented to enhanced authentication
	Username string
	Password string
	// GSTIN is the registration every document is issued under
	GSTIN string

	AuthPath         string
	EnhancedAuthPath string
	GenerateIRNPath  string
	CancelIRNPath    string
	IRNByDocPath     string

	Timeout               time.Duration
	RetryOnTransportError bool
	RateLimitRPS          float64
	RateLimitBurst        int
}

// MissingSettings lists every required setting that is empty, by config key
func (c Config) MissingSettings() []string {
	required := []struct {
		key   string
		value string
	}{
		{"gsp.base_url", c.BaseURL},
		{"gsp.client_id", c.ClientID},
		{"gsp.client_secret", c.ClientSecret},
		{"gsp.username", c.Username},
		{"gsp.password", c.Password},
		{"gsp.gstin", c.GSTIN},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.key)
		}
	}
	return missing
}

// Validate returns a configuration error naming all missing settings
func (c Config) Validate() error {
	if missing := c.MissingSettings(); len(missing) > 0 {
		return einvoice.NewConfigurationError(missing)
	}
	return nil
}

func (c *Config) applyDefaults() {
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.AuthPath == "" {
		c.AuthPath = DefaultAuthPath
	}
	if c.EnhancedAuthPath == "" {
		c.EnhancedAuthPath = DefaultEnhancedAuthPath
	}
	if c.GenerateIRNPath == "" {
		c.GenerateIRNPath = DefaultGenerateIRNPath
	}
	if c.CancelIRNPath == "" {
		c.CancelIRNPath = DefaultCancelIRNPath
	}
	if c.IRNByDocPath == "" {
		c.IRNByDocPath = DefaultIRNByDocPath
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}
