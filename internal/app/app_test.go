package app

import (
	"errors"
	"testing"
	"time"

	"github.com/ItsNotGoodName/x-rxstore/internal/config"
	"github.com/ItsNotGoodName/x-rxstore/pkg/component"
	"github.com/ItsNotGoodName/x-rxstore/pkg/store"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func testConfig(variant string) config.Config {
	return config.Config{
		Counter: config.Counter{Start: 10, Step: 2, AsyncDelay: "5ms"},
		Binding: config.Binding{Variant: variant, Sync: true},
	}
}

func TestReducer(t *testing.T) {
	reducer := Reducer(5, 2)

	tests := []struct {
		name   string
		state  State
		action store.Action
		want   State
	}{
		{"init", State{Count: 99}, store.Action{Type: store.ActionInit}, State{Count: 5}},
		{"increment step", State{Count: 1}, store.Action{Type: ActionIncrement}, State{Count: 3}},
		{"increment amount", State{Count: 1}, store.Action{Type: ActionIncrement, Payload: 10}, State{Count: 11}},
		{"decrement json", State{Count: 1}, store.Action{Type: ActionDecrement, Payload: float64(4)}, State{Count: -3}},
		{"async", State{}, store.Action{Type: ActionIncrementAsync}, State{Pending: 1}},
		{"async done", State{Pending: 1}, store.Action{Type: ActionIncrementAsyncDone}, State{Count: 2}},
		{"tick", State{}, store.Action{Type: ActionTick}, State{Ticks: 1}},
		{"failed", State{}, store.Action{Type: ActionFailed, Payload: errors.New("boom")}, State{LastError: "boom"}},
		{"reset", State{Count: 7, Ticks: 3}, store.Action{Type: ActionReset}, State{Count: 5}},
		{"unknown", State{Count: 7}, store.Action{Type: "other"}, State{Count: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reducer(tt.state, tt.action); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAsyncEffects(t *testing.T) {
	st := store.New(Reducer(0, 1), State{})
	st.AddEffects(AsyncEffects(5 * time.Millisecond))
	defer st.Close()

	st.Dispatch(store.Action{Type: ActionIncrementAsync, Payload: 3})
	if st.State().Pending != 1 {
		t.Fatalf("Pending = %d, want 1", st.State().Pending)
	}

	waitFor(t, func() bool { return st.State().Count == 3 })
	if st.State().Pending != 0 {
		t.Errorf("Pending = %d, want 0", st.State().Pending)
	}
}

func TestAsyncEffectsNegativeDelay(t *testing.T) {
	st := store.New(Reducer(0, 1), State{})
	st.AddEffects(AsyncEffects(-time.Second))
	defer st.Close()

	if st.State().LastError != ErrNegativeDelay.Error() {
		t.Errorf("LastError = %q", st.State().LastError)
	}
}

func TestTickEffects(t *testing.T) {
	st := store.New(Reducer(0, 1), State{})
	st.AddEffects(TickEffects(0))
	defer st.Close()

	st.Dispatch(store.Action{Type: ActionTick})

	if got := st.State(); got.Ticks != 1 || got.Count != 1 {
		t.Errorf("State() = %+v, want 1 tick and count 1", got)
	}
}

func TestAppBindsView(t *testing.T) {
	for _, variant := range []string{"store", "inferno"} {
		t.Run(variant, func(t *testing.T) {
			a, err := New(testConfig(variant), component.Immediate)
			if err != nil {
				t.Fatal(err)
			}
			defer a.Close()

			a.Store.Dispatch(store.Action{Type: ActionIncrement})
			a.Store.Dispatch(store.Action{Type: ActionTick})

			state := a.View.State()
			if state["count"] != 12 || state["ticks"] != 1 || state["failed"] != false {
				t.Errorf("State() = %v", state)
			}
		})
	}
}

func TestAppGenericVariantCombines(t *testing.T) {
	a, err := New(testConfig("generic"), component.Immediate)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	a.Store.Dispatch(store.Action{Type: ActionIncrement, Payload: 5})

	waitFor(t, func() bool { return a.View.State()["count"] == 15 })
}

func TestAppCloseStopsView(t *testing.T) {
	sched := component.NewManual()
	a, err := New(testConfig("store"), sched)
	if err != nil {
		t.Fatal(err)
	}
	a.Close()

	a.Store.Dispatch(store.Action{Type: ActionIncrement})
	sched.Flush()

	if !a.View.IsUnmounted() {
		t.Error("view still mounted")
	}
	if a.View.State()["count"] == 12 {
		t.Error("view updated after close")
	}
}

func TestBinderOptions(t *testing.T) {
	if _, err := BinderOptions(config.Binding{Variant: "bogus"}); err == nil {
		t.Error("expected error for unknown variant")
	}
	if _, err := BinderOptions(config.Binding{Debounce: "soon"}); err == nil {
		t.Error("expected error for bad debounce")
	}
	opts, err := BinderOptions(config.Binding{Variant: "inferno", Sync: true, Debounce: "10ms"})
	if err != nil {
		t.Fatal(err)
	}
	if len(opts) != 3 {
		t.Errorf("got %d options, want 3", len(opts))
	}
}

func TestViewWithoutProvider(t *testing.T) {
	if err := NewView(component.Immediate).Bind(config.Binding{}); !errors.Is(err, ErrNoStore) {
		t.Errorf("error = %v, want ErrNoStore", err)
	}
}
