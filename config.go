package spruce

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every Config.Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Counts holds the fixed particle count of every category.
type Counts struct {
	Orb      int `yaml:"orb"`
	Star     int `yaml:"star"`
	Gift     int `yaml:"gift"`
	Candy    int `yaml:"candy"`
	Ornament int `yaml:"ornament"`
	Ribbon   int `yaml:"ribbon"`
}

// Of returns the count configured for c.
func (n Counts) Of(c Category) int {
	switch c {
	case CategoryOrb:
		return n.Orb
	case CategoryStar:
		return n.Star
	case CategoryGift:
		return n.Gift
	case CategoryCandy:
		return n.Candy
	case CategoryOrnament:
		return n.Ornament
	case CategoryRibbon:
		return n.Ribbon
	default:
		return 0
	}
}

// Total returns the sum over all categories.
func (n Counts) Total() int {
	return n.Orb + n.Star + n.Gift + n.Candy + n.Ornament + n.Ribbon
}

// Config holds the scene geometry and morph tuning. Every field has a
// working default from DefaultConfig; YAML files only need the overrides.
type Config struct {
	// TreeRadius is the cone base radius of the tree form.
	TreeRadius float32 `yaml:"treeRadius"`
	// TreeHeight is the cone height; the tree is centered on y=0.
	TreeHeight float32 `yaml:"treeHeight"`
	// NebulaRadius sets the cloud spread (per-axis sigma is NebulaRadius/2).
	NebulaRadius float32 `yaml:"nebulaRadius"`
	// RibbonCloudScale shrinks the ribbon's cloud form relative to NebulaRadius.
	RibbonCloudScale float32 `yaml:"ribbonCloudScale"`
	// RibbonTurns and RibbonOffset shape the light strand spiral.
	RibbonTurns  float32 `yaml:"ribbonTurns"`
	RibbonOffset float32 `yaml:"ribbonOffset"`
	// OrnamentTurns shapes the hanging ornament spiral.
	OrnamentTurns float32 `yaml:"ornamentTurns"`

	Counts Counts `yaml:"counts"`

	// MorphEase is the per-frame easing factor of t toward its target.
	MorphEase float32 `yaml:"morphEase"`
	// CenterEase is the per-frame easing factor of the cloud center.
	CenterEase float32 `yaml:"centerEase"`
	// RotationEase is the per-frame easing factor of the orientation.
	RotationEase float32 `yaml:"rotationEase"`
	// FollowAbove: the cloud center tracks the hand only while t exceeds it.
	FollowAbove float32 `yaml:"followAbove"`
	// ReturnBelow: the cloud center returns to the origin once t drops below it.
	ReturnBelow float32 `yaml:"returnBelow"`
	// TreeBelow and NebulaAbove are the phase label thresholds.
	TreeBelow   float32 `yaml:"treeBelow"`
	NebulaAbove float32 `yaml:"nebulaAbove"`

	// CloudSpanX and CloudSpanY map the normalized hand position to world units.
	CloudSpanX float32 `yaml:"cloudSpanX"`
	CloudSpanY float32 `yaml:"cloudSpanY"`
	// CloudDepth maps the hand depth proxy to a world z range.
	CloudDepth Range `yaml:"cloudDepth"`

	// ChaosAmplitude is the peak mid-transition excursion.
	ChaosAmplitude float32 `yaml:"chaosAmplitude"`
	// AutoRotate is the cloud spin in radians per second about y.
	AutoRotate float32 `yaml:"autoRotate"`

	// FastInertia applies to categories flagged as fast movers.
	FastInertia float32 `yaml:"fastInertia"`
	// SlowInertia plus SlowInertiaStep*(seed%50) applies to the rest.
	SlowInertia     float32 `yaml:"slowInertia"`
	SlowInertiaStep float32 `yaml:"slowInertiaStep"`

	// RepelRadius, RepelStrength and RepelBelow control pointer repulsion.
	RepelRadius   float32 `yaml:"repelRadius"`
	RepelStrength float32 `yaml:"repelStrength"`
	RepelBelow    float32 `yaml:"repelBelow"`
	// PointerScale maps normalized device pointer coords to world units.
	PointerScale float32 `yaml:"pointerScale"`
	// PointerDepth is the world z the pointer is projected onto.
	PointerDepth float32 `yaml:"pointerDepth"`
}

// DefaultConfig returns the stock sculpture: 7220 particles on a 15-unit tree.
func DefaultConfig() Config {
	return Config{
		TreeRadius:       6,
		TreeHeight:       15,
		NebulaRadius:     30,
		RibbonCloudScale: 0.8,
		RibbonTurns:      8,
		RibbonOffset:     0.2,
		OrnamentTurns:    6,
		Counts: Counts{
			Orb:      4000,
			Star:     1500,
			Gift:     500,
			Candy:    500,
			Ornament: 120,
			Ribbon:   600,
		},
		MorphEase:       0.05,
		CenterEase:      0.05,
		RotationEase:    0.1,
		FollowAbove:     0.2,
		ReturnBelow:     0.1,
		TreeBelow:       0.1,
		NebulaAbove:     0.9,
		CloudSpanX:      50,
		CloudSpanY:      30,
		CloudDepth:      Range{Min: -10, Max: 15},
		ChaosAmplitude:  5,
		AutoRotate:      0.05,
		FastInertia:     0.08,
		SlowInertia:     0.03,
		SlowInertiaStep: 0.001,
		RepelRadius:     5,
		RepelStrength:   2,
		RepelBelow:      0.2,
		PointerScale:    15,
		PointerDepth:    2,
	}
}

// ParseConfig decodes YAML over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// Validate reports the first out-of-range field.
func (c *Config) Validate() error {
	for _, f := range []struct {
		name string
		v    float32
	}{
		{"treeRadius", c.TreeRadius},
		{"treeHeight", c.TreeHeight},
		{"nebulaRadius", c.NebulaRadius},
		{"ribbonCloudScale", c.RibbonCloudScale},
		{"ribbonTurns", c.RibbonTurns},
		{"ribbonOffset", c.RibbonOffset},
		{"ornamentTurns", c.OrnamentTurns},
		{"morphEase", c.MorphEase},
		{"centerEase", c.CenterEase},
		{"rotationEase", c.RotationEase},
		{"followAbove", c.FollowAbove},
		{"returnBelow", c.ReturnBelow},
		{"treeBelow", c.TreeBelow},
		{"nebulaAbove", c.NebulaAbove},
		{"cloudSpanX", c.CloudSpanX},
		{"cloudSpanY", c.CloudSpanY},
		{"cloudDepth.min", c.CloudDepth.Min},
		{"cloudDepth.max", c.CloudDepth.Max},
		{"chaosAmplitude", c.ChaosAmplitude},
		{"autoRotate", c.AutoRotate},
		{"fastInertia", c.FastInertia},
		{"slowInertia", c.SlowInertia},
		{"slowInertiaStep", c.SlowInertiaStep},
		{"repelRadius", c.RepelRadius},
		{"repelStrength", c.RepelStrength},
		{"repelBelow", c.RepelBelow},
		{"pointerScale", c.PointerScale},
		{"pointerDepth", c.PointerDepth},
	} {
		if !finite32(f.v) {
			return fmt.Errorf("%w: %s is not finite (%v)", ErrInvalidConfig, f.name, f.v)
		}
	}
	if c.TreeRadius <= 0 || c.TreeHeight <= 0 {
		return fmt.Errorf("%w: tree radius and height must be positive (%.2f, %.2f)",
			ErrInvalidConfig, c.TreeRadius, c.TreeHeight)
	}
	if c.NebulaRadius <= 0 {
		return fmt.Errorf("%w: nebula radius must be positive (%.2f)", ErrInvalidConfig, c.NebulaRadius)
	}
	for cat := Category(0); cat < categoryCount; cat++ {
		if n := c.Counts.Of(cat); n < 0 {
			return fmt.Errorf("%w: %s count is negative (%d)", ErrInvalidConfig, cat, n)
		}
	}
	for _, f := range []struct {
		name string
		v    float32
	}{
		{"morphEase", c.MorphEase},
		{"centerEase", c.CenterEase},
		{"rotationEase", c.RotationEase},
		{"fastInertia", c.FastInertia},
		{"slowInertia", c.SlowInertia},
		{"slowInertia+49*slowInertiaStep", c.SlowInertia + 49*c.SlowInertiaStep},
	} {
		if !(f.v > 0 && f.v <= 1) {
			return fmt.Errorf("%w: %s must be in (0, 1] (%.3f)", ErrInvalidConfig, f.name, f.v)
		}
	}
	if c.ReturnBelow > c.FollowAbove {
		return fmt.Errorf("%w: returnBelow(%.2f) > followAbove(%.2f)",
			ErrInvalidConfig, c.ReturnBelow, c.FollowAbove)
	}
	if c.TreeBelow >= c.NebulaAbove {
		return fmt.Errorf("%w: treeBelow(%.2f) >= nebulaAbove(%.2f)",
			ErrInvalidConfig, c.TreeBelow, c.NebulaAbove)
	}
	if c.RepelRadius < 0 {
		return fmt.Errorf("%w: repel radius is negative (%.2f)", ErrInvalidConfig, c.RepelRadius)
	}
	return nil
}
