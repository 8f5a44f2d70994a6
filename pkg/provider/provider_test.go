package provider

import (
	"errors"
	"testing"

	"github.com/ItsNotGoodName/x-rxstore/pkg/component"
	"github.com/ItsNotGoodName/x-rxstore/pkg/store"
)

func newStore() *store.Store[int] {
	return store.New(func(state int, _ store.Action) int { return state }, 1)
}

func TestRenderRequiresOneChild(t *testing.T) {
	tests := []struct {
		name     string
		children []*component.Component
		wantErr  bool
	}{
		{"none", nil, true},
		{"one", []*component.Component{component.New("a")}, false},
		{"two", []*component.Component{component.New("a"), component.New("b")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(newStore(), tt.children...)

			child, err := p.Render()
			if tt.wantErr {
				if !errors.Is(err, ErrOnlyOneChild) {
					t.Errorf("Render() error = %v, want ErrOnlyOneChild", err)
				}
				if err := p.Mount(); !errors.Is(err, ErrOnlyOneChild) {
					t.Errorf("Mount() error = %v, want ErrOnlyOneChild", err)
				}
				return
			}
			if err != nil || child != tt.children[0] {
				t.Errorf("Render() = %v, %v", child, err)
			}
		})
	}
}

func TestFromFindsStoreInDescendants(t *testing.T) {
	st := newStore()
	child := component.New("child")
	grandchild := component.New("grandchild")
	child.AddChild(grandchild)

	p := New(st, child)
	if err := p.Mount(); err != nil {
		t.Fatal(err)
	}

	got, ok := From[int](grandchild)
	if !ok || got != st {
		t.Errorf("From() = %v, %v", got, ok)
	}
	if !grandchild.IsMounted() {
		t.Error("subtree not mounted")
	}

	if _, ok := From[string](grandchild); ok {
		t.Error("From() matched a store of another state type")
	}
	if _, ok := From[int](component.New("orphan")); ok {
		t.Error("From() found a store outside the provider")
	}
}
