package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ExampleConfigPath is the sample configuration shipped with the repository.
const ExampleConfigPath = "config/bridge.example.json"

// Defaults applied when neither the config file nor a flag sets a value.
const (
	DefaultListen      = ":8000"
	DefaultPortPath    = "/dev/ttyACM0"
	DefaultBaudRate    = 115200
	DefaultReadTimeout = time.Second
	DefaultWebDir      = "build"
)

// UnavailablePolicy decides how the bridge answers a valid request while the
// serial link is down.
type UnavailablePolicy string

const (
	// PolicyDegrade logs the missed command and still acknowledges the client
	// so the web UI keeps working without hardware attached.
	PolicyDegrade UnavailablePolicy = "degrade"
	// PolicyFail answers 503 so the client knows the command went nowhere.
	PolicyFail UnavailablePolicy = "fail"
)

// ParseUnavailablePolicy validates a policy name.
func ParseUnavailablePolicy(s string) (UnavailablePolicy, error) {
	switch p := UnavailablePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyDegrade, PolicyFail:
		return p, nil
	case "":
		return PolicyDegrade, nil
	default:
		return "", fmt.Errorf("unknown unavailable policy %q: expected %q or %q", s, PolicyDegrade, PolicyFail)
	}
}

// BridgeConfig is the on-disk configuration. Every field is optional; the
// Get* methods fall back to the defaults above and command-line flags
// override whatever the file sets.
type BridgeConfig struct {
	Listen            *string `json:"listen,omitempty"`
	PortPath          *string `json:"port_path,omitempty"`
	BaudRate          *int    `json:"baud_rate,omitempty"`
	ReadTimeout       *string `json:"read_timeout,omitempty"` // duration string like "1s"
	UnavailablePolicy *string `json:"unavailable_policy,omitempty"`
	WebDir            *string `json:"web_dir,omitempty"`
	DisableSerial     *bool   `json:"disable_serial,omitempty"`
}

// EmptyBridgeConfig returns a BridgeConfig with all fields unset.
func EmptyBridgeConfig() *BridgeConfig {
	return &BridgeConfig{}
}

// LoadBridgeConfig loads a BridgeConfig from a JSON file. The file must have a
// .json extension, be under 1MB and contain only known fields.
func LoadBridgeConfig(path string) (*BridgeConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	f, err := os.Open(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	defer f.Close()

	cfg := EmptyBridgeConfig()
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *BridgeConfig) Validate() error {
	if c.BaudRate != nil && *c.BaudRate <= 0 {
		return fmt.Errorf("baud_rate must be positive, got %d", *c.BaudRate)
	}

	if c.ReadTimeout != nil && *c.ReadTimeout != "" {
		d, err := time.ParseDuration(*c.ReadTimeout)
		if err != nil {
			return fmt.Errorf("invalid read_timeout '%s': %w", *c.ReadTimeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("read_timeout must be positive, got %s", d)
		}
	}

	if c.UnavailablePolicy != nil {
		if _, err := ParseUnavailablePolicy(*c.UnavailablePolicy); err != nil {
			return err
		}
	}

	if c.Listen != nil && *c.Listen == "" {
		return fmt.Errorf("listen must not be empty")
	}

	return nil
}

// GetListen returns the HTTP listen address.
func (c *BridgeConfig) GetListen() string {
	if c.Listen == nil || *c.Listen == "" {
		return DefaultListen
	}
	return *c.Listen
}

// GetPortPath returns the serial device path.
func (c *BridgeConfig) GetPortPath() string {
	if c.PortPath == nil || *c.PortPath == "" {
		return DefaultPortPath
	}
	return *c.PortPath
}

// GetBaudRate returns the serial baud rate.
func (c *BridgeConfig) GetBaudRate() int {
	if c.BaudRate == nil || *c.BaudRate <= 0 {
		return DefaultBaudRate
	}
	return *c.BaudRate
}

// GetReadTimeout parses and returns the serial read timeout.
func (c *BridgeConfig) GetReadTimeout() time.Duration {
	if c.ReadTimeout == nil || *c.ReadTimeout == "" {
		return DefaultReadTimeout
	}
	d, err := time.ParseDuration(*c.ReadTimeout)
	if err != nil || d <= 0 {
		return DefaultReadTimeout
	}
	return d
}

// GetUnavailablePolicy returns the configured policy, degrading by default.
func (c *BridgeConfig) GetUnavailablePolicy() UnavailablePolicy {
	if c.UnavailablePolicy == nil {
		return PolicyDegrade
	}
	p, err := ParseUnavailablePolicy(*c.UnavailablePolicy)
	if err != nil {
		return PolicyDegrade
	}
	return p
}

// GetWebDir returns the directory holding the built web UI.
func (c *BridgeConfig) GetWebDir() string {
	if c.WebDir == nil {
		return DefaultWebDir
	}
	return *c.WebDir
}

// GetDisableSerial reports whether the serial link should be left unopened.
func (c *BridgeConfig) GetDisableSerial() bool {
	return c.DisableSerial != nil && *c.DisableSerial
}
