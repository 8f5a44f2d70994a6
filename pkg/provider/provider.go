// Package provider hands one store to a component subtree.
package provider

import (
	"errors"

	"github.com/ItsNotGoodName/x-rxstore/pkg/component"
	"github.com/ItsNotGoodName/x-rxstore/pkg/store"
)

var ErrOnlyOneChild = errors.New("only one child is allowed within the provider")

type storeKey struct{}

type Provider[S any] struct {
	component *component.Component
	store     *store.Store[S]
}

func New[S any](st *store.Store[S], children ...*component.Component) *Provider[S] {
	c := component.New("Provider")
	c.SetContext(storeKey{}, st)
	for _, child := range children {
		c.AddChild(child)
	}

	return &Provider[S]{
		component: c,
		store:     st,
	}
}

func (p *Provider[S]) Component() *component.Component {
	return p.component
}

func (p *Provider[S]) Store() *store.Store[S] {
	return p.store
}

// Render returns the only child.
func (p *Provider[S]) Render() (*component.Component, error) {
	children := p.component.Children()
	if len(children) != 1 {
		return nil, ErrOnlyOneChild
	}
	return children[0], nil
}

// Mount renders, then mounts the subtree.
func (p *Provider[S]) Mount() error {
	if _, err := p.Render(); err != nil {
		return err
	}
	p.component.Mount()
	return nil
}

func (p *Provider[S]) Unmount() {
	p.component.Unmount()
}

// From finds the store provided to c or one of its ancestors.
func From[S any](c *component.Component) (*store.Store[S], bool) {
	v, ok := c.Context(storeKey{})
	if !ok {
		return nil, false
	}
	st, ok := v.(*store.Store[S])
	return st, ok
}
