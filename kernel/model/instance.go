package model

import "fmt"

const (
	StatePending = "pending"
	StateRunning = "running"

	// HealthOk is assumed for instances the provider has no status record for yet.
	HealthOk = "ok"

	// PendingAddress is rendered in place of a public address that is not yet assigned.
	PendingAddress = "pending"
)

// Mode is a launch template registered with the provider out-of-band.
type Mode struct {
	Name string `json:"name" yaml:"name"`
}

// ManagedInstance is one compute instance carrying the ownership tag.
type ManagedInstance struct {
	Id            string `json:"id"`
	Mode          string `json:"mode"`
	PublicAddress string `json:"public_address,omitempty"`
	State         string `json:"state,omitempty"`
	HealthStatus  string `json:"health_status"`
}

func (i ManagedInstance) Address() string {
	if i.PublicAddress == "" {
		return PendingAddress
	}
	return i.PublicAddress
}

func (i ManagedInstance) Health() string {
	if i.HealthStatus == "" {
		return HealthOk
	}
	return i.HealthStatus
}

// Name is the user-facing handle of the instance, {mode}-{id}.
func (i ManagedInstance) Name() string {
	return fmt.Sprintf("%s-%s", i.Mode, i.Id)
}

// Listing renders the instance as a single line, e.g. "deathmatch-i-0001: 1.2.3.4 (impaired)".
// The status suffix is omitted for healthy instances.
func (i ManagedInstance) Listing() string {
	line := fmt.Sprintf("%s: %s", i.Name(), i.Address())
	if health := i.Health(); health != HealthOk {
		line += fmt.Sprintf(" (%s)", health)
	}
	return line
}

func Listings(instances []ManagedInstance) []string {
	lines := make([]string, 0, len(instances))
	for _, i := range instances {
		lines = append(lines, i.Listing())
	}
	return lines
}

func ModeNames(modes []Mode) []string {
	names := make([]string, 0, len(modes))
	for _, m := range modes {
		names = append(names, m.Name)
	}
	return names
}
