package hw

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrNotFound  = errors.New("device not found")
	ErrWrongType = errors.New("device has wrong type")
)

// Map is a registry of named devices, filled in by a backend before the
// robot is constructed.
type Map struct {
	mu      sync.RWMutex
	devices map[string]any
}

// NewMap creates an empty device map.
func NewMap() *Map {
	return &Map{devices: make(map[string]any)}
}

// Register adds or replaces a device.
func (m *Map) Register(name string, device any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.devices[name] = device
}

// Lookup returns the device registered under name.
func (m *Map) Lookup(name string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.devices[name]
	return d, ok
}

// Names returns all registered device names, sorted.
func (m *Map) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.devices))
	for name := range m.devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Binding is an optional capability. An unbound binding carries the reason
// it could not be bound.
type Binding[T any] struct {
	name   string
	device T
	bound  bool
	err    error
}

// Bind looks up name in m and checks that it implements T.
func Bind[T any](m *Map, name string) Binding[T] {
	b := Binding[T]{name: name}
	if m == nil {
		b.err = fmt.Errorf("bind %s: %w", name, ErrNotFound)
		return b
	}
	raw, ok := m.Lookup(name)
	if !ok {
		b.err = fmt.Errorf("bind %s: %w", name, ErrNotFound)
		return b
	}
	device, ok := raw.(T)
	if !ok {
		b.err = fmt.Errorf("bind %s (%T): %w", name, raw, ErrWrongType)
		return b
	}
	b.device = device
	b.bound = true
	return b
}

// Bound wraps an already constructed device.
func Bound[T any](name string, device T) Binding[T] {
	return Binding[T]{name: name, device: device, bound: true}
}

// Get returns the device and whether it is bound.
func (b Binding[T]) Get() (T, bool) {
	return b.device, b.bound
}

// Bound reports whether the capability is available.
func (b Binding[T]) Bound() bool {
	return b.bound
}

// Name returns the hardware name the binding was requested under.
func (b Binding[T]) Name() string {
	return b.name
}

// Err returns why the binding is unbound, or nil.
func (b Binding[T]) Err() error {
	return b.err
}
