// Package component is the minimal component model the state bindings run
// against: render state, lifecycle hooks and context values inherited from
// ancestors.
package component

import (
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
)

type State map[string]any

// Clone returns a shallow copy.
func (s State) Clone() State {
	if s == nil {
		return State{}
	}
	return maps.Clone(s)
}

type Option func(*Component)

func WithScheduler(scheduler Scheduler) Option {
	return func(c *Component) { c.scheduler = scheduler }
}

func WithState(state State) Option {
	return func(c *Component) { c.state = state.Clone() }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Component) { c.logger = logger }
}

type Component struct {
	ID   string
	Name string

	logger    *slog.Logger
	scheduler Scheduler

	mu        sync.Mutex
	state     State
	pending   State
	scheduled bool
	commits   int
	mounted   bool
	unmounted bool
	onMount   []func()
	onUnmount []func()
	onCommit  []func(State)

	parent   *Component
	children []*Component
	values   map[any]any
}

func New(name string, opts ...Option) *Component {
	c := &Component{
		ID:        uuid.NewString(),
		Name:      name,
		logger:    slog.Default(),
		scheduler: Immediate,
		state:     State{},
		values:    make(map[any]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the committed state.
func (c *Component) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

func (c *Component) Commits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commits
}

// SetState queues patch to be merged into the state on the next commit.
// Patches queued before the commit runs are coalesced.
func (c *Component) SetState(patch State) {
	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		return
	}
	if c.pending == nil {
		c.pending = State{}
	}
	maps.Copy(c.pending, patch)
	if c.scheduled {
		c.mu.Unlock()
		return
	}
	c.scheduled = true
	c.mu.Unlock()

	c.scheduler.Schedule(c.commit)
}

// SetStateSync merges patch, and anything still queued, right away.
func (c *Component) SetStateSync(patch State) {
	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		return
	}
	if c.pending == nil {
		c.pending = State{}
	}
	maps.Copy(c.pending, patch)
	c.mu.Unlock()

	c.commit()
}

func (c *Component) commit() {
	c.mu.Lock()
	c.scheduled = false
	if c.unmounted || c.pending == nil {
		c.pending = nil
		c.mu.Unlock()
		return
	}

	next := c.state.Clone()
	maps.Copy(next, c.pending)
	c.state = next
	c.pending = nil
	c.commits++
	hooks := slices.Clone(c.onCommit)
	c.mu.Unlock()

	for _, fn := range hooks {
		fn(next.Clone())
	}
}

// OnCommit registers a render hook called with the state after every commit.
func (c *Component) OnCommit(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onCommit = append(c.onCommit, fn)
}

// OnMount registers fn to run when the component mounts. It runs right away
// if the component is already mounted and never if it was unmounted.
func (c *Component) OnMount(fn func()) {
	c.mu.Lock()
	switch {
	case c.unmounted:
		c.mu.Unlock()
	case c.mounted:
		c.mu.Unlock()
		fn()
	default:
		c.onMount = append(c.onMount, fn)
		c.mu.Unlock()
	}
}

// OnUnmount registers fn to run when the component unmounts. It runs right
// away if the component is already unmounted.
func (c *Component) OnUnmount(fn func()) {
	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		fn()
		return
	}
	c.onUnmount = append(c.onUnmount, fn)
	c.mu.Unlock()
}

func (c *Component) IsMounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mounted
}

func (c *Component) IsUnmounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unmounted
}

// Mount mounts the children first, then runs this component's mount hooks.
// A component mounts at most once.
func (c *Component) Mount() {
	for _, child := range c.Children() {
		child.Mount()
	}

	c.mu.Lock()
	if c.mounted || c.unmounted {
		c.mu.Unlock()
		return
	}
	c.mounted = true
	hooks := c.onMount
	c.onMount = nil
	c.mu.Unlock()

	c.logger.Debug("Mounted component", "package", "component", "name", c.Name, "id", c.ID)

	for _, fn := range hooks {
		fn()
	}
}

// Unmount runs the unmount hooks, then unmounts the children. State updates
// are dropped from the moment unmounting starts.
func (c *Component) Unmount() {
	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		return
	}
	c.unmounted = true
	c.mounted = false
	c.pending = nil
	c.onMount = nil
	hooks := c.onUnmount
	c.onUnmount = nil
	c.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}

	for _, child := range c.Children() {
		child.Unmount()
	}

	c.logger.Debug("Unmounted component", "package", "component", "name", c.Name, "id", c.ID)
}

func (c *Component) AddChild(child *Component) {
	child.mu.Lock()
	child.parent = c
	child.mu.Unlock()

	c.mu.Lock()
	c.children = append(c.children, child)
	c.mu.Unlock()
}

func (c *Component) Children() []*Component {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.children)
}

func (c *Component) Parent() *Component {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.parent
}

// SetContext makes value visible to this component and its descendants.
func (c *Component) SetContext(key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// Context looks key up on this component, then on each ancestor.
func (c *Component) Context(key any) (any, bool) {
	for cur := c; cur != nil; cur = cur.Parent() {
		cur.mu.Lock()
		value, ok := cur.values[key]
		cur.mu.Unlock()
		if ok {
			return value, true
		}
	}
	return nil, false
}
