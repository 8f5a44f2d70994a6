package app

import (
	"encoding/json"

	"github.com/ItsNotGoodName/x-rxstore/pkg/actiontype"
	"github.com/ItsNotGoodName/x-rxstore/pkg/store"
)

var (
	ActionIncrement          = actiontype.MustRegister("[Counter] Increment")
	ActionDecrement          = actiontype.MustRegister("[Counter] Decrement")
	ActionIncrementAsync     = actiontype.MustRegister("[Counter] Increment Async")
	ActionIncrementAsyncDone = actiontype.MustRegister("[Counter] Increment Async Done")
	ActionReset              = actiontype.MustRegister("[Counter] Reset")
	ActionTick               = actiontype.MustRegister("[Counter] Tick")
	ActionFailed             = actiontype.MustRegister("[Counter] Failed")
)

type State struct {
	Count     int    `json:"count"`
	Ticks     int    `json:"ticks"`
	Pending   int    `json:"pending"`
	LastError string `json:"last_error,omitempty"`
}

// Reducer applies counter actions. Increments and decrements take an
// optional amount as payload and fall back to step.
func Reducer(start, step int) store.Reducer[State] {
	return func(state State, action store.Action) State {
		switch action.Type {
		case store.ActionInit, ActionReset:
			return State{Count: start}
		case ActionIncrement:
			state.Count += amount(action.Payload, step)
		case ActionDecrement:
			state.Count -= amount(action.Payload, step)
		case ActionIncrementAsync:
			state.Pending++
		case ActionIncrementAsyncDone:
			state.Pending--
			state.Count += amount(action.Payload, step)
		case ActionTick:
			state.Ticks++
		case ActionFailed:
			if err, ok := action.Payload.(error); ok {
				state.LastError = err.Error()
			} else if msg, ok := action.Payload.(string); ok {
				state.LastError = msg
			}
		}
		return state
	}
}

func amount(payload any, fallback int) int {
	switch v := payload.(type) {
	case int:
		return v
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return fallback
}
