package app

import (
	"errors"
	"time"

	"github.com/ItsNotGoodName/x-rxstore/pkg/actions"
	"github.com/ItsNotGoodName/x-rxstore/pkg/rx"
	"github.com/ItsNotGoodName/x-rxstore/pkg/store"
)

var ErrNegativeDelay = errors.New("negative delay")

// AsyncEffects completes every increment async after delay.
func AsyncEffects(delay time.Duration) store.Effects {
	return func(a *actions.Actions) []rx.Observable[store.Action] {
		if delay < 0 {
			return []rx.Observable[store.Action]{
				rx.Of(store.Action{Type: ActionFailed, Payload: ErrNegativeDelay}),
			}
		}

		delayed := rx.Delay[store.Action](a.OfType(ActionIncrementAsync), delay)
		return []rx.Observable[store.Action]{
			rx.Map(delayed, func(action store.Action) store.Action {
				return store.Action{Type: ActionIncrementAsyncDone, Payload: action.Payload}
			}),
		}
	}
}

// TickEffects dispatches a tick every interval and an increment for every
// tick. A zero interval disables the ticker.
func TickEffects(interval time.Duration) store.Effects {
	return func(a *actions.Actions) []rx.Observable[store.Action] {
		increments := rx.Map[store.Action, store.Action](a.OfType(ActionTick), func(store.Action) store.Action {
			return store.Action{Type: ActionIncrement}
		})
		if interval <= 0 {
			return []rx.Observable[store.Action]{increments}
		}

		ticks := rx.Map(rx.Interval(interval), func(int) store.Action {
			return store.Action{Type: ActionTick}
		})
		return []rx.Observable[store.Action]{ticks, increments}
	}
}
