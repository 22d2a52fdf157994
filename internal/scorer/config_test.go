package scorer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
)

func TestValidate_Default(t *testing.T) {
	assert.NoError(t, Validate(DefaultConfig()))
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative contact points", func(c *Config) { c.EmailPoints = -1 }},
		{"no tiers", func(c *Config) { c.Tiers = nil }},
		{"boundary above 100", func(c *Config) { c.Tiers[0].MinScore = 120 }},
		{"missing priority label", func(c *Config) { c.Tiers[1].Priority = "" }},
		{"lowest boundary not zero", func(c *Config) { c.Tiers[3].MinScore = 10 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestLoadProfile_OverlaysDefaults(t *testing.T) {
	profile := `
phone_points: 30
tiers:
  - min_score: 70
    priority: Urgent
  - min_score: 60
    priority: High
  - min_score: 50
    priority: Medium
  - min_score: 0
    priority: Low
`
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(profile), 0o644))

	cfg, err := LoadProfile(path)
	require.NoError(t, err)

	// Overridden values take effect.
	assert.Equal(t, 30, cfg.PhonePoints)
	assert.Equal(t, 70, sortedTiers(cfg.Tiers)[0].MinScore)
	// Untouched tables keep their defaults.
	assert.Equal(t, 25, cfg.EmailPoints)
	assert.Equal(t, DefaultConfig().RatingBands, cfg.RatingBands)

	s := New(cfg)
	assert.Equal(t, model.PriorityUrgent, s.priorityFor(72))
	assert.Equal(t, model.PriorityHigh, s.priorityFor(65))
}

func TestLoadProfile_Missing(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadProfile_InvalidProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tiers:\n  - min_score: 40\n    priority: High\n"), 0o644))

	_, err := LoadProfile(path)
	assert.Error(t, err)
}
