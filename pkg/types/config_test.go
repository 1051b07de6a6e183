package types

import (
	"errors"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate, got: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"no roots", func(c *Config) { c.Roots = nil }, ErrRootsEmpty},
		{"no registry", func(c *Config) { c.RegistryPath = "" }, ErrRegistryPathEmpty},
		{"zero timeout", func(c *Config) { c.DefaultTimeout = 0 }, ErrTimeoutInvalid},
		{"negative timeout", func(c *Config) { c.DefaultTimeout = -5 }, ErrTimeoutInvalid},
		{"zero size budget", func(c *Config) { c.MaxNotebookBytes = 0 }, ErrSizeBudgetInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRuleDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DisabledRules = []string{"nb/size", "qmod/main"}

	if !cfg.RuleDisabled("nb/size") {
		t.Error("nb/size should be disabled")
	}
	if cfg.RuleDisabled("nb/kernel") {
		t.Error("nb/kernel should not be disabled")
	}
}
