// Package settings persists user preferences for the spruce hosts with
// gdata. Without a gdata manager it runs in memory only.
package settings

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/spruce"
)

// minDensity keeps every category populated when density is lowered.
const minDensity = 0.1

// Preferences are the user-facing options that survive restarts.
type Preferences struct {
	// Density scales every particle count, 0.1 to 1.
	Density     float64 `yaml:"density"`
	AutoRotate  bool    `yaml:"autoRotate"`
	ShowOverlay bool    `yaml:"showOverlay"`
	// StartTracker starts hand tracking on launch.
	StartTracker bool `yaml:"startTracker"`
	// ConfigPath is an optional YAML file passed to spruce.LoadConfig.
	ConfigPath string `yaml:"configPath,omitempty"`
}

// DefaultPreferences returns the defaults used on first launch.
func DefaultPreferences() *Preferences {
	return &Preferences{
		Density:     1,
		AutoRotate:  true,
		ShowOverlay: true,
	}
}

// Manager loads, edits and saves Preferences.
type Manager struct {
	gdataManager *gdata.Manager // nil runs in memory only
	prefs        *Preferences
}

const (
	prefsObject   = "settings"
	prefsProperty = "preferences"
)

// NewManager creates a manager and loads saved preferences. A load failure
// is logged and leaves the defaults in place.
func NewManager(gdataManager *gdata.Manager) *Manager {
	m := &Manager{
		gdataManager: gdataManager,
		prefs:        DefaultPreferences(),
	}
	if err := m.Load(); err != nil {
		log.Printf("[Settings] Warning: %v (using defaults)", err)
	}
	return m
}

// Open opens the gdata store for appName and returns a manager over it. If
// the store cannot be opened the manager runs in memory only.
func Open(appName string) *Manager {
	gm, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Printf("[Settings] Warning: open storage: %v (preferences will not persist)", err)
		gm = nil
	}
	return NewManager(gm)
}

// Load reads the saved preferences. Missing data is not an error.
func (m *Manager) Load() error {
	if m.gdataManager == nil || !m.gdataManager.ObjectPropExists(prefsObject, prefsProperty) {
		m.prefs = DefaultPreferences()
		return nil
	}
	data, err := m.gdataManager.LoadObjectProp(prefsObject, prefsProperty)
	if err != nil {
		m.prefs = DefaultPreferences()
		return fmt.Errorf("load preferences: %w", err)
	}
	loaded := DefaultPreferences()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		m.prefs = DefaultPreferences()
		return fmt.Errorf("unmarshal preferences: %w", err)
	}
	loaded.Density = clampDensity(loaded.Density)
	m.prefs = loaded
	log.Printf("[Settings] Preferences loaded")
	return nil
}

// Save writes the preferences. It is a no-op in memory-only mode.
func (m *Manager) Save() error {
	if m.gdataManager == nil {
		return nil
	}
	data, err := yaml.Marshal(m.prefs)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	if err := m.gdataManager.SaveObjectProp(prefsObject, prefsProperty, data); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	log.Printf("[Settings] Preferences saved")
	return nil
}

// Persistent reports whether Save writes to storage.
func (m *Manager) Persistent() bool { return m.gdataManager != nil }

// Preferences returns the current preferences. Edits through the setters
// are visible immediately and persisted by Save.
func (m *Manager) Preferences() *Preferences { return m.prefs }

// SetDensity sets the particle density, clamped to [0.1, 1].
func (m *Manager) SetDensity(d float64) { m.prefs.Density = clampDensity(d) }

func (m *Manager) SetAutoRotate(on bool)   { m.prefs.AutoRotate = on }
func (m *Manager) SetShowOverlay(on bool)  { m.prefs.ShowOverlay = on }
func (m *Manager) SetStartTracker(on bool) { m.prefs.StartTracker = on }
func (m *Manager) SetConfigPath(p string)  { m.prefs.ConfigPath = p }

// Apply returns cfg with the category counts scaled by the density. Every
// configured category keeps at least one particle.
func (p *Preferences) Apply(cfg spruce.Config) spruce.Config {
	d := clampDensity(p.Density)
	if d == 1 {
		return cfg
	}
	scale := func(n int) int {
		if n <= 0 {
			return n
		}
		return max(1, int(float64(n)*d))
	}
	c := &cfg.Counts
	c.Orb = scale(c.Orb)
	c.Star = scale(c.Star)
	c.Gift = scale(c.Gift)
	c.Candy = scale(c.Candy)
	c.Ornament = scale(c.Ornament)
	c.Ribbon = scale(c.Ribbon)
	return cfg
}

func clampDensity(d float64) float64 {
	if !(d >= minDensity) {
		return minDensity
	}
	if d > 1 {
		return 1
	}
	return d
}
