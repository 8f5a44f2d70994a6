package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestNewStoreWritesDefault(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			store, err := NewStore(NewDriver(path))
			if err != nil {
				t.Fatalf("NewStore() error = %v", err)
			}

			exists, err := NewDriver(path).Exists()
			if err != nil || !exists {
				t.Fatalf("Exists() = %v, %v", exists, err)
			}

			cfg, err := store.GetConfig()
			if err != nil {
				t.Fatalf("GetConfig() error = %v", err)
			}
			if cfg.Counter.Step != 1 || cfg.Binding.Variant != "generic" {
				t.Errorf("GetConfig() = %+v", cfg)
			}
		})
	}
}

func TestUpdateConfig(t *testing.T) {
	store, err := NewStore(NewYAML(filepath.Join(t.TempDir(), "config.yaml")))
	if err != nil {
		t.Fatal(err)
	}

	err = store.UpdateConfig(func(cfg Config) (Config, error) {
		cfg.Counter.Tick = "250ms"
		return cfg, nil
	})
	if err != nil {
		t.Fatalf("UpdateConfig() error = %v", err)
	}

	cfg, err := store.GetConfig()
	if err != nil {
		t.Fatal(err)
	}
	if d, err := cfg.Counter.TickDuration(); err != nil || d != 250*time.Millisecond {
		t.Errorf("TickDuration() = %v, %v", d, err)
	}
}

func TestParseDurationError(t *testing.T) {
	if _, err := (Counter{Tick: "soon"}).TickDuration(); err == nil {
		t.Error("expected error")
	}
	if d, err := (Counter{}).TickDuration(); err != nil || d != 0 {
		t.Errorf("TickDuration() = %v, %v", d, err)
	}
}
