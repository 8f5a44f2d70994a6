package store

import (
	"github.com/ItsNotGoodName/x-rxstore/pkg/actions"
	"github.com/ItsNotGoodName/x-rxstore/pkg/rx"
)

// Effects is instantiated with the action stream and returns the streams
// whose actions are dispatched back into the store.
type Effects func(actions *actions.Actions) []rx.Observable[Action]

// AddEffects merges the output of every producer into dispatch. Errors are
// not isolated: a failing stream ends the merged stream of this call.
func (s *Store[S]) AddEffects(effects ...Effects) *rx.Subscription {
	var sources []rx.Observable[Action]
	for _, effect := range effects {
		sources = append(sources, effect(s.actions)...)
	}

	sub := rx.Merge(sources...).Subscribe(s.Observer())
	s.effects.AddSubscription(sub)

	return sub
}
