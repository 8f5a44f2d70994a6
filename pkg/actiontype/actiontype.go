// Package actiontype keeps action labels unique for the lifetime of the
// process. Every label passes through Register, so a duplicate is caught
// where it is declared.
package actiontype

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

var ErrNotUnique = errors.New("action type is not unique")

type Registry struct {
	mu     sync.RWMutex
	labels map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		labels: make(map[string]struct{}),
	}
}

// Register records label and returns it. Labels are never removed.
func (r *Registry) Register(label string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.labels[label]; ok {
		return "", fmt.Errorf("%w: %q", ErrNotUnique, label)
	}
	r.labels[label] = struct{}{}

	return label, nil
}

func (r *Registry) MustRegister(label string) string {
	label, err := r.Register(label)
	if err != nil {
		panic(err)
	}
	return label
}

func (r *Registry) IsRegistered(label string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.labels[label]
	return ok
}

// Registered returns every label in sorted order.
func (r *Registry) Registered() []string {
	r.mu.RLock()
	labels := make([]string, 0, len(r.labels))
	for label := range r.labels {
		labels = append(labels, label)
	}
	r.mu.RUnlock()

	slices.Sort(labels)
	return labels
}

var std = NewRegistry()

func Register(label string) (string, error) { return std.Register(label) }

// MustRegister is Register for package level declarations.
func MustRegister(label string) string { return std.MustRegister(label) }

func IsRegistered(label string) bool { return std.IsRegistered(label) }

func Registered() []string { return std.Registered() }

// Default returns the registry the package level functions use.
func Default() *Registry { return std }
