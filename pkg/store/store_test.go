package store

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/ItsNotGoodName/x-rxstore/pkg/actions"
	"github.com/ItsNotGoodName/x-rxstore/pkg/rx"
)

func counter(state int, action Action) int {
	switch action.Type {
	case ActionInit:
		return 100
	case "inc":
		return state + 1
	case "dec":
		return state - 1
	default:
		return state
	}
}

func collectTypes(s *Store[int]) *[]string {
	var got []string
	s.Actions().Subscribe(rx.Observer[Action]{Next: func(a Action) { got = append(got, a.Type) }})
	return &got
}

func TestRegisterUsesInitAction(t *testing.T) {
	s := Register(counter)
	if s.State() != 100 {
		t.Errorf("State() = %d, want 100", s.State())
	}
}

func TestDispatchReduces(t *testing.T) {
	s := New(counter, 0)

	var states []int
	s.Subscribe(rx.Observer[int]{Next: func(v int) { states = append(states, v) }})

	s.Dispatch(Action{Type: "inc"})
	s.Dispatch(Action{Type: "inc"})
	s.Dispatch(Action{Type: "dec"})

	if !slices.Equal(states, []int{0, 1, 2, 1}) {
		t.Errorf("states = %v, want [0 1 2 1]", states)
	}
}

func TestDispatchFromStateSubscriberIsQueued(t *testing.T) {
	s := New(counter, 0)

	var states []int
	s.Subscribe(rx.Observer[int]{Next: func(v int) {
		if v == 1 {
			s.Dispatch(Action{Type: "inc"})
		}
	}})
	s.Subscribe(rx.Observer[int]{Next: func(v int) { states = append(states, v) }})

	s.Dispatch(Action{Type: "inc"})

	if s.State() != 2 {
		t.Errorf("State() = %d, want 2", s.State())
	}
	if !slices.Contains(states, 2) {
		t.Errorf("states = %v, missing 2", states)
	}
}

func TestAddEffectsMergesProducers(t *testing.T) {
	s := New(counter, 0)
	got := collectTypes(s)

	ping := func(a *actions.Actions) []rx.Observable[Action] {
		return []rx.Observable[Action]{
			rx.Map[Action, Action](a.OfType("ping"), func(Action) Action { return Action{Type: "pong"} }),
		}
	}
	twice := func(a *actions.Actions) []rx.Observable[Action] {
		return []rx.Observable[Action]{
			rx.Map[Action, Action](a.OfType("twice"), func(Action) Action { return Action{Type: "inc"} }),
			rx.Map[Action, Action](a.OfType("twice"), func(Action) Action { return Action{Type: "inc"} }),
		}
	}

	s.AddEffects(ping, twice)

	s.Dispatch(Action{Type: "ping"})
	s.Dispatch(Action{Type: "twice"})

	want := []string{"ping", "pong", "twice", "inc", "inc"}
	if !slices.Equal(*got, want) {
		t.Errorf("actions = %v, want %v", *got, want)
	}
	if s.State() != 2 {
		t.Errorf("State() = %d, want 2", s.State())
	}
}

func TestEffectErrorIsNotContained(t *testing.T) {
	s := New(counter, 0)
	got := collectTypes(s)

	failing := rx.NewSubject[Action]()
	s.AddEffects(
		func(*actions.Actions) []rx.Observable[Action] { return []rx.Observable[Action]{failing} },
		func(a *actions.Actions) []rx.Observable[Action] {
			return []rx.Observable[Action]{
				rx.Map[Action, Action](a.OfType("ping"), func(Action) Action { return Action{Type: "pong"} }),
			}
		},
	)

	failing.Error(errors.New("boom"))
	s.Dispatch(Action{Type: "ping"})

	if !slices.Equal(*got, []string{"ping"}) {
		t.Errorf("actions = %v, want [ping]", *got)
	}
}

func TestCloseReleasesEffects(t *testing.T) {
	s := New(counter, 0)
	source := rx.NewSubject[Action]()
	s.AddEffects(func(*actions.Actions) []rx.Observable[Action] { return []rx.Observable[Action]{source} })

	s.Close()

	if source.Observed() {
		t.Error("effect source still subscribed after Close")
	}
}

func TestCombineReducers(t *testing.T) {
	reducer := CombineReducers(map[string]Reducer[any]{
		"count": func(state any, action Action) any {
			n, _ := state.(int)
			if action.Type == "inc" {
				n++
			}
			return n
		},
		"last": func(state any, action Action) any { return action.Type },
	})

	s := Register(reducer)
	s.Dispatch(Action{Type: "inc"})

	state := s.State()
	if state["count"] != 1 || state["last"] != "inc" {
		t.Errorf("State() = %v", state)
	}
}

func TestSelectIsDistinct(t *testing.T) {
	s := New(counter, 0)

	var got []bool
	Select(s, func(v int) bool { return v > 1 }).Subscribe(rx.Observer[bool]{Next: func(v bool) { got = append(got, v) }})

	for range 3 {
		s.Dispatch(Action{Type: "inc"})
	}

	if !slices.Equal(got, []bool{false, true}) {
		t.Errorf("got %v, want [false true]", got)
	}
}

func TestSelectFuncUsesEqual(t *testing.T) {
	s := New(counter, 0)

	var got []map[string]int
	parity := SelectFunc(s, func(v int) map[string]int {
		return map[string]int{"parity": v % 2, "value": v}
	}, func(a, b map[string]int) bool {
		return a["parity"] == b["parity"]
	})
	parity.Subscribe(rx.Observer[map[string]int]{Next: func(v map[string]int) { got = append(got, v) }})

	s.Dispatch(Action{Type: "inc"})
	s.Dispatch(Action{Type: "inc"})
	s.Dispatch(Action{Type: "inc"})
	s.Dispatch(Action{Type: "inc"})
	s.Dispatch(Action{Type: "inc"})

	values := make([]int, 0, len(got))
	for _, v := range got {
		values = append(values, v["value"])
	}
	if !slices.Equal(values, []int{0, 1, 2, 3, 4, 5}) {
		t.Errorf("values = %v, want [0 1 2 3 4 5]", values)
	}

	got = nil
	s.Dispatch(Action{Type: "unknown"})
	if len(got) != 0 {
		t.Errorf("got %v after an unchanged state, want nothing", got)
	}
}

func TestDispatchWaitWhileAnotherGoroutineDrains(t *testing.T) {
	s := New(counter, 0)

	entered := make(chan struct{})
	release := make(chan struct{})
	s.Subscribe(rx.Observer[int]{Next: func(v int) {
		if v == 1 {
			close(entered)
			<-release
		}
	}})

	go s.Dispatch(Action{Type: "inc"})
	<-entered

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.DispatchWait(ctx, Action{Type: "inc"}); !errors.Is(err, context.Canceled) {
		t.Errorf("DispatchWait() error = %v, want context.Canceled", err)
	}

	result := make(chan int, 1)
	go func() {
		state, err := s.DispatchWait(context.Background(), Action{Type: "inc"})
		if err != nil {
			t.Error(err)
		}
		result <- state
	}()

	select {
	case got := <-result:
		t.Fatalf("DispatchWait() returned %d before its action was reduced", got)
	case <-time.After(20 * time.Millisecond):
	}

	close(release)

	select {
	case got := <-result:
		if got != 3 {
			t.Errorf("DispatchWait() = %d, want 3", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("DispatchWait() did not return")
	}
}
