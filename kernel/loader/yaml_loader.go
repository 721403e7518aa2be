package loader

import (
	"fmt"
	"net/url"
	"os"
	"regexp"

	"github.com/michaelquigley/pfxlog"
	"github.com/openziti/virgo/kernel/model"
	"github.com/openziti/virgo/kernel/store"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// LoadConfig reads a virgo configuration file. Unset keys keep their defaults.
func LoadConfig(path string) (*model.VirgoConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

// LoadConfigOrDefault behaves like LoadConfig but returns the defaults when path does not exist.
func LoadConfigOrDefault(path string) (*model.VirgoConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return model.DefaultConfig(), nil
	}
	return LoadConfig(path)
}

func ParseConfig(data []byte) (*model.VirgoConfig, error) {
	result, err := ValidateConfigBytes(data)
	if err != nil {
		return nil, err
	}
	if !result.IsValid() {
		return nil, result
	}
	for _, warning := range result.Warnings {
		pfxlog.Logger().Warnf("config %s: %s", warning.Path, warning.Message)
	}
	return result.Config, nil
}

type ValidationIssue struct {
	Path    string
	Message string
}

type ValidationResult struct {
	Config   *model.VirgoConfig
	Errors   []ValidationIssue
	Warnings []ValidationIssue
}

func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

func (r *ValidationResult) Error() string {
	if len(r.Errors) == 0 {
		return "configuration is valid"
	}
	msg := fmt.Sprintf("invalid configuration: %s: %s", r.Errors[0].Path, r.Errors[0].Message)
	if len(r.Errors) > 1 {
		msg += fmt.Sprintf(" (and %d more)", len(r.Errors)-1)
	}
	return msg
}

func (r *ValidationResult) addError(path, format string, args ...interface{}) {
	r.Errors = append(r.Errors, ValidationIssue{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) addWarning(path, format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, ValidationIssue{Path: path, Message: fmt.Sprintf(format, args...)})
}

var regionFormat = regexp.MustCompile(`^[a-z]{2}(-[a-z]+)+-\d+$`)

// ValidateConfigBytes parses data over the defaults and reports every problem found. The
// returned error is only set when the YAML itself cannot be parsed.
func ValidateConfigBytes(data []byte) (*ValidationResult, error) {
	cfg := model.DefaultConfig()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}
	if cfg.Events.Subject == "" {
		cfg.Events.Subject = model.DefaultSubject
	}

	result := &ValidationResult{Config: cfg}

	known := false
	for _, name := range store.ProviderTypes() {
		if name == cfg.Provider {
			known = true
		}
	}
	if !known {
		result.addError("provider", "unknown provider '%s', expected one of %v", cfg.Provider, store.ProviderTypes())
	}

	if cfg.Provider == store.ProviderEc2 && !regionFormat.MatchString(cfg.Region) {
		result.addError("region", "'%s' is not a valid region name", cfg.Region)
	}
	if cfg.OwnershipTag == "" {
		result.addError("ownership_tag", "ownership tag key must not be empty")
	}
	if cfg.Endpoint != "" {
		if u, err := url.Parse(cfg.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
			result.addError("endpoint", "'%s' is not an absolute url", cfg.Endpoint)
		}
	}

	if cfg.Provider == store.ProviderMemory && len(cfg.SandboxModes) == 0 {
		result.addWarning("sandbox_modes", "memory provider has no modes; every launch will fail")
	}
	if cfg.Provider != store.ProviderMemory && len(cfg.SandboxModes) > 0 {
		result.addWarning("sandbox_modes", "ignored by provider '%s'", cfg.Provider)
	}
	seen := make(map[string]bool)
	for n, mode := range cfg.SandboxModes {
		if seen[mode] {
			result.addError(fmt.Sprintf("sandbox_modes[%d]", n), "duplicate mode '%s'", mode)
		}
		seen[mode] = true
	}

	influx := cfg.Metrics.Influx
	if influx.Enabled() && (influx.Org == "" || influx.Bucket == "") {
		result.addError("metrics.influx", "org and bucket are required when url is set")
	}

	return result, nil
}
