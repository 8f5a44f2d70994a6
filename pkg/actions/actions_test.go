package actions

import (
	"slices"
	"testing"

	"github.com/ItsNotGoodName/x-rxstore/pkg/rx"
)

func types(src rx.Observable[Action]) []string {
	var got []string
	src.Subscribe(rx.Observer[Action]{Next: func(a Action) { got = append(got, a.Type) }})
	return got
}

func source() *Actions {
	return New(rx.Of(
		Action{Type: "A", Payload: 1},
		Action{Type: "B"},
		Action{Type: "A", Payload: 2},
		Action{Type: "C"},
	))
}

func TestOfType(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want []string
	}{
		{"single", []string{"A"}, []string{"A", "A"}},
		{"many", []string{"A", "C"}, []string{"A", "A", "C"}},
		{"unknown", []string{"D"}, nil},
		{"none", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := types(source().OfType(tt.keys...)); !slices.Equal(got, tt.want) {
				t.Errorf("OfType(%v) = %v, want %v", tt.keys, got, tt.want)
			}
		})
	}
}

func TestOfTypeKeepsOrder(t *testing.T) {
	var payloads []any
	source().OfType("A").Subscribe(rx.Observer[Action]{Next: func(a Action) { payloads = append(payloads, a.Payload) }})

	if len(payloads) != 2 || payloads[0] != 1 || payloads[1] != 2 {
		t.Errorf("payloads = %v, want [1 2]", payloads)
	}
}

func TestPipeKeepsOfType(t *testing.T) {
	rename := func(src rx.Observable[Action]) rx.Observable[Action] {
		return rx.Map(src, func(a Action) Action {
			if a.Type == "B" {
				a.Type = "C"
			}
			return a
		})
	}

	got := types(source().Pipe(rename).OfType("C"))
	if !slices.Equal(got, []string{"C", "C"}) {
		t.Errorf("got %v, want [C C]", got)
	}
}

func TestOfTypeIsLazyPerSubscriber(t *testing.T) {
	subject := rx.NewSubject[Action]()
	filtered := New(subject).OfType("A")

	var first, second []string
	filtered.Subscribe(rx.Observer[Action]{Next: func(a Action) { first = append(first, a.Type) }})
	subject.Next(Action{Type: "A"})
	filtered.Subscribe(rx.Observer[Action]{Next: func(a Action) { second = append(second, a.Type) }})
	subject.Next(Action{Type: "A"})

	if len(first) != 2 || len(second) != 1 {
		t.Errorf("first = %v, second = %v", first, second)
	}
}
