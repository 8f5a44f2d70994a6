package config

import (
	"fmt"
	"time"
)

var defaultConfig = Config{
	Counter: Counter{
		Start:      0,
		Step:       1,
		AsyncDelay: "1s",
		Tick:       "",
	},
	Binding: Binding{
		Variant:  "generic",
		Debounce: "0s",
	},
}

type Config struct {
	Counter Counter `json:"counter" yaml:"counter"`
	Binding Binding `json:"binding" yaml:"binding"`
}

type Counter struct {
	Start      int    `json:"start" yaml:"start"`
	Step       int    `json:"step" yaml:"step"`
	AsyncDelay string `json:"async_delay" yaml:"async_delay"`
	Tick       string `json:"tick" yaml:"tick"` // empty disables the ticker
}

type Binding struct {
	Variant  string `json:"variant" yaml:"variant"` // [store, inferno, generic]
	Sync     bool   `json:"sync" yaml:"sync"`
	Debounce string `json:"debounce" yaml:"debounce"`
}

func (c Counter) AsyncDelayDuration() (time.Duration, error) {
	return parseDuration("counter.async_delay", c.AsyncDelay)
}

func (c Counter) TickDuration() (time.Duration, error) {
	return parseDuration("counter.tick", c.Tick)
}

func (b Binding) DebounceDuration() (time.Duration, error) {
	return parseDuration("binding.debounce", b.Debounce)
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}
