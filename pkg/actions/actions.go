// Package actions filters the dispatched action stream by type.
package actions

import "github.com/ItsNotGoodName/x-rxstore/pkg/rx"

type Action struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type Operator func(rx.Observable[Action]) rx.Observable[Action]

// Actions is an action stream that keeps OfType available after every
// operator applied through Pipe.
type Actions struct {
	source rx.Observable[Action]
}

func New(source rx.Observable[Action]) *Actions {
	return &Actions{source: source}
}

func (a *Actions) Subscribe(observer rx.Observer[Action]) *rx.Subscription {
	return a.source.Subscribe(observer)
}

func (a *Actions) Pipe(ops ...Operator) *Actions {
	var src rx.Observable[Action] = a
	for _, op := range ops {
		src = op(src)
	}
	return New(src)
}

// OfType keeps actions whose Type equals one of keys.
func (a *Actions) OfType(keys ...string) *Actions {
	return a.Pipe(func(src rx.Observable[Action]) rx.Observable[Action] {
		return rx.Filter(src, matcher(keys))
	})
}

func matcher(keys []string) func(Action) bool {
	if len(keys) == 1 {
		key := keys[0]
		return func(a Action) bool { return a.Type == key }
	}

	return func(a Action) bool {
		for _, key := range keys {
			if key == a.Type {
				return true
			}
		}
		return false
	}
}
