package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/openziti/virgo/kernel/model"
)

const ProviderMemory = "memory"

func init() {
	RegisterProviderType(ProviderMemory, OpenMemory)
}

// MemoryStore is an in-process Provider used as a sandbox and in tests. It mimics the EC2 behaviors
// virgo depends on, including the error codes EC2 reports for unknown templates and instance ids.
type MemoryStore struct {
	mu        sync.RWMutex
	ownership model.Ownership
	templates []memoryTemplate
	instances []*memoryInstance
	health    map[string]string
	nextId    int
	autoBoot  bool
	closed    bool
}

type memoryTemplate struct {
	name string
	tags map[string]string
}

type memoryInstance struct {
	id      string
	state   string
	address string
	tags    map[string]string
}

func NewMemoryStore(ownership model.Ownership) *MemoryStore {
	return &MemoryStore{
		ownership: ownership,
		health:    make(map[string]string),
	}
}

// OpenMemory builds a sandbox seeded with cfg.SandboxModes. Launched instances boot on the
// next describe call and receive a private placeholder address.
func OpenMemory(cfg *model.VirgoConfig) (Provider, error) {
	s := NewMemoryStore(cfg.Ownership())
	s.autoBoot = true
	for _, mode := range cfg.SandboxModes {
		s.AddMode(mode)
	}
	return s, nil
}

// AddMode registers an owned launch template.
func (s *MemoryStore) AddMode(name string) {
	s.AddTemplate(name, s.ownership.Tag(name))
}

// AddTemplate registers a launch template with arbitrary tags.
func (s *MemoryStore) AddTemplate(name string, tags map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates = append(s.templates, memoryTemplate{name: name, tags: copyTags(tags)})
}

// AddInstance inserts an instance as if it had been created out-of-band.
func (s *MemoryStore) AddInstance(id, state, address string, tags map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances = append(s.instances, &memoryInstance{id: id, state: state, address: address, tags: copyTags(tags)})
}

func (s *MemoryStore) SetHealth(id, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.health[id] = status
}

// Boot moves a pending instance to running with the given public address.
func (s *MemoryStore) Boot(id, address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.find(id); i != nil && i.state == model.StatePending {
		i.state = model.StateRunning
		i.address = address
	}
}

// State returns the lifecycle state of id, or "" when the instance is unknown.
func (s *MemoryStore) State(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.find(id); i != nil {
		return i.state
	}
	return ""
}

// Tags returns a copy of the tags on id.
func (s *MemoryStore) Tags(id string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.find(id); i != nil {
		return copyTags(i.tags)
	}
	return nil
}

func (s *MemoryStore) DescribeModes(_ context.Context, names []string) ([]model.Mode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	for _, name := range names {
		if s.template(name) == nil {
			return nil, awserr.New("InvalidLaunchTemplateName.NotFoundException",
				fmt.Sprintf("At least one of the launch templates specified in the request does not exist. (%s)", name), nil)
		}
	}
	var modes []model.Mode
	for _, t := range s.templates {
		if !s.ownership.Owns(t.tags) {
			continue
		}
		if len(names) > 0 && !contains(names, t.name) {
			continue
		}
		modes = append(modes, model.Mode{Name: t.name})
	}
	return modes, nil
}

func (s *MemoryStore) RunInstance(_ context.Context, mode string) ([]model.ManagedInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if s.template(mode) == nil {
		return nil, awserr.New("InvalidLaunchTemplateName.NotFoundException",
			fmt.Sprintf("The specified launch template, with template name %s, does not exist.", mode), nil)
	}
	s.nextId++
	i := &memoryInstance{id: fmt.Sprintf("i-%04d", s.nextId), state: model.StatePending}
	s.instances = append(s.instances, i)
	return []model.ManagedInstance{{Id: i.id, Mode: mode, State: i.state}}, nil
}

func (s *MemoryStore) TagOwned(_ context.Context, ids []string, mode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	for _, id := range ids {
		if s.find(id) == nil {
			return awserr.New("InvalidInstanceID.NotFound", fmt.Sprintf("The instance ID '%s' does not exist", id), nil)
		}
	}
	for _, id := range ids {
		i := s.find(id)
		if i.tags == nil {
			i.tags = make(map[string]string)
		}
		i.tags[s.ownership.TagKey] = mode
	}
	return nil
}

func (s *MemoryStore) DescribeInstances(_ context.Context, states ...string) ([]model.ManagedInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if s.autoBoot {
		s.bootPending()
	}
	var instances []model.ManagedInstance
	for _, i := range s.instances {
		if !s.ownership.Owns(i.tags) {
			continue
		}
		if len(states) > 0 && !contains(states, i.state) {
			continue
		}
		instances = append(instances, model.ManagedInstance{
			Id:            i.id,
			Mode:          s.ownership.ModeOf(i.tags),
			PublicAddress: i.address,
			State:         i.state,
		})
	}
	return instances, nil
}

func (s *MemoryStore) DescribeHealth(_ context.Context, ids []string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	health := make(map[string]string, len(ids))
	for _, id := range ids {
		if status, found := s.health[id]; found {
			health[id] = status
		}
	}
	return health, nil
}

func (s *MemoryStore) TerminateInstances(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	for _, id := range ids {
		if !strings.HasPrefix(id, "i-") {
			return awserr.New("InvalidInstanceID.Malformed", fmt.Sprintf("Invalid id: \"%s\"", id), nil)
		}
		if s.find(id) == nil {
			return awserr.New("InvalidInstanceID.NotFound", fmt.Sprintf("The instance ID '%s' does not exist", id), nil)
		}
	}
	for _, id := range ids {
		s.find(id).state = "terminated"
		delete(s.health, id)
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *MemoryStore) bootPending() {
	for n, i := range s.instances {
		if i.state == model.StatePending {
			i.state = model.StateRunning
			if i.address == "" {
				i.address = fmt.Sprintf("10.0.0.%d", n+1)
			}
		}
	}
}

func (s *MemoryStore) find(id string) *memoryInstance {
	for _, i := range s.instances {
		if i.id == id {
			return i
		}
	}
	return nil
}

func (s *MemoryStore) template(name string) *memoryTemplate {
	for n := range s.templates {
		if s.templates[n].name == name {
			return &s.templates[n]
		}
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func copyTags(tags map[string]string) map[string]string {
	if tags == nil {
		return nil
	}
	result := make(map[string]string, len(tags))
	for k, v := range tags {
		result[k] = v
	}
	return result
}
