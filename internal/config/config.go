package config

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/appstore/internal/errors"
	"github.com/vango-dev/appstore/pkg/record"
)

const (
	// JSONFileName is the JSON configuration file name.
	JSONFileName = "appstore.json"

	// YAMLFileName is the YAML configuration file name.
	YAMLFileName = "appstore.yaml"

	// DefaultAddr is the default listen address.
	DefaultAddr = ":8080"

	// DefaultTimeout is the default per-request timeout.
	DefaultTimeout = "10s"

	// DefaultRetries is the default number of retries after a failed request.
	DefaultRetries = 2

	// DefaultRetryDelay is the default pause between attempts.
	DefaultRetryDelay = "100ms"

	// BackendMemory keeps records in process memory.
	BackendMemory = "memory"

	// BackendS3 keeps records as JSON objects in an S3 bucket.
	BackendS3 = "s3"
)

// FileNames lists the configuration files Load looks for, in order.
var FileNames = []string{JSONFileName, YAMLFileName, "appstore.yml"}

// Config represents the complete appstore configuration.
type Config struct {
	// Name is the deployment name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`

	// Server contains the HTTP listener configuration.
	Server ServerConfig `json:"server" yaml:"server"`

	// Transport contains the store's HTTP client configuration.
	Transport TransportConfig `json:"transport" yaml:"transport"`

	// Backend contains the record server's storage configuration.
	Backend BackendConfig `json:"backend" yaml:"backend"`

	// Models are registered with the store, in order.
	Models []ModelConfig `json:"models" yaml:"models"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains listener settings.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`

	// Title is the live page title. Defaults to Name.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// TransportConfig contains store HTTP client settings. Durations use
// time.ParseDuration syntax.
type TransportConfig struct {
	Timeout              string  `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Retries              *int    `json:"retries,omitempty" yaml:"retries,omitempty"`
	RetryDelay           string  `json:"retryDelay,omitempty" yaml:"retryDelay,omitempty"`
	RateLimit            float64 `json:"rateLimit,omitempty" yaml:"rateLimit,omitempty"`
	Burst                int     `json:"burst,omitempty" yaml:"burst,omitempty"`
	MaxConcurrentFetches int     `json:"maxConcurrentFetches,omitempty" yaml:"maxConcurrentFetches,omitempty"`
}

// BackendConfig contains record server storage settings.
type BackendConfig struct {
	// Type is "memory" (default) or "s3".
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	// Bucket is the S3 bucket. Required for the s3 backend.
	Bucket string `json:"bucket,omitempty" yaml:"bucket,omitempty"`

	// Prefix is the S3 key prefix.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`

	// Region overrides the AWS region from the environment.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// Seed records are written to the backend at startup, by model.
	Seed map[string][]record.Record `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// ModelConfig describes one store model.
type ModelConfig struct {
	Name        string `json:"name" yaml:"name"`
	Endpoint    string `json:"endpoint" yaml:"endpoint"`
	IDAttribute string `json:"idAttribute,omitempty" yaml:"idAttribute,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	retries := DefaultRetries
	return &Config{
		Server: ServerConfig{
			Addr: DefaultAddr,
		},
		Transport: TransportConfig{
			Timeout:    DefaultTimeout,
			Retries:    &retries,
			RetryDelay: DefaultRetryDelay,
		},
		Backend: BackendConfig{
			Type: BackendMemory,
		},
	}
}

// Load reads configuration from the first of FileNames found in dir.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New(errors.CodeConfigNotFound).
		WithDetail("No appstore.json or appstore.yaml found in " + dir)
}

// LoadFile reads configuration from path. Files ending in .yaml or .yml
// are parsed as YAML, anything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigNotFound).
				WithDetail("No config file at " + path)
		}
		return nil, errors.New(errors.CodeConfig).Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New(errors.CodeConfig).
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error())
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// SaveTo writes the configuration to path, as YAML or JSON by extension.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New(errors.CodeConfig).Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.CodeConfig).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.Title == "" {
		c.Server.Title = c.Name
	}
	if c.Transport.Timeout == "" {
		c.Transport.Timeout = DefaultTimeout
	}
	if c.Transport.Retries == nil {
		retries := DefaultRetries
		c.Transport.Retries = &retries
	}
	if c.Transport.RetryDelay == "" {
		c.Transport.RetryDelay = DefaultRetryDelay
	}
	if c.Backend.Type == "" {
		c.Backend.Type = BackendMemory
	}
	for i := range c.Models {
		if c.Models[i].IDAttribute == "" {
			c.Models[i].IDAttribute = record.DefaultIDAttribute
		}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		return invalid("server.addr %q: %v", c.Server.Addr, err)
	}

	for _, field := range []struct{ name, value string }{
		{"transport.timeout", c.Transport.Timeout},
		{"transport.retryDelay", c.Transport.RetryDelay},
	} {
		d, err := time.ParseDuration(field.value)
		if err != nil {
			return invalid("%s %q is not a duration", field.name, field.value)
		}
		if d < 0 {
			return invalid("%s must not be negative", field.name)
		}
	}
	if c.Transport.Retries != nil && *c.Transport.Retries < 0 {
		return invalid("transport.retries must not be negative")
	}
	if c.Transport.RateLimit < 0 || c.Transport.Burst < 0 || c.Transport.MaxConcurrentFetches < 0 {
		return invalid("transport limits must not be negative")
	}

	switch c.Backend.Type {
	case BackendMemory:
	case BackendS3:
		if c.Backend.Bucket == "" {
			return invalid("backend.bucket is required for the s3 backend")
		}
	default:
		return invalid("backend.type %q must be %q or %q", c.Backend.Type, BackendMemory, BackendS3)
	}

	seen := make(map[string]bool, len(c.Models))
	for i, m := range c.Models {
		if m.Name == "" {
			return invalid("models[%d] has no name", i)
		}
		if m.Endpoint == "" {
			return invalid("model %q has no endpoint", m.Name)
		}
		if seen[m.Name] {
			return invalid("model %q is listed twice", m.Name)
		}
		seen[m.Name] = true
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.CodeConfig).WithDetailf(format, args...)
}

// Timeout returns the parsed per-request timeout.
func (c *Config) Timeout() time.Duration {
	d, _ := time.ParseDuration(c.Transport.Timeout)
	return d
}

// RetryDelay returns the parsed delay between attempts.
func (c *Config) RetryDelay() time.Duration {
	d, _ := time.ParseDuration(c.Transport.RetryDelay)
	return d
}

// Retries returns the number of retries after a failed request.
func (c *Config) Retries() int {
	if c.Transport.Retries == nil {
		return DefaultRetries
	}
	return *c.Transport.Retries
}

// BaseURL returns the http URL of the listen address, using localhost
// for an empty or wildcard host.
func (c *Config) BaseURL() string {
	host, port, err := net.SplitHostPort(c.Server.Addr)
	if err != nil {
		return "http://" + c.Server.Addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// EndpointURL resolves a model endpoint. Endpoints starting with "/" are
// joined to BaseURL.
func (c *Config) EndpointURL(m ModelConfig) string {
	if strings.HasPrefix(m.Endpoint, "/") {
		return c.BaseURL() + m.Endpoint
	}
	return m.Endpoint
}

// Model returns the named model's configuration.
func (c *Config) Model(name string) (ModelConfig, bool) {
	for _, m := range c.Models {
		if m.Name == name {
			return m, true
		}
	}
	return ModelConfig{}, false
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range FileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find one holding a config file.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(errors.CodeConfigNotFound).
				WithDetail("No appstore config found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working
// directory or its nearest ancestor holding a config file.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
