package spruce

import "github.com/go-gl/mathgl/mgl32"

// Category identifies one particle group. Each category owns its own target
// sets, state arena and renderer buffer.
type Category uint8

const (
	CategoryOrb      Category = iota // small emissive spheres, the bulk of the tree
	CategoryStar                     // bright tetrahedra
	CategoryGift                     // box ornaments
	CategoryCandy                    // elongated cane ornaments
	CategoryOrnament                 // large reflective baubles on a spiral
	CategoryRibbon                   // twinkling point-light strand
	categoryCount
)

// Categories lists every category in update order.
var Categories = [...]Category{
	CategoryOrb, CategoryStar, CategoryGift, CategoryCandy, CategoryOrnament, CategoryRibbon,
}

func (c Category) String() string {
	if c < categoryCount {
		return categorySpecs[c].name
	}
	return "unknown"
}

// treeShape selects the generator for a category's tree form.
type treeShape uint8

const (
	shapeCone           treeShape = iota // volume fill of the cone
	shapeOrnamentSpiral                  // sparse spiral on the cone surface
	shapeRibbonSpiral                    // dense spiral floating outside the surface
)

// scaleRule selects how a particle's scale is driven each frame.
type scaleRule uint8

const (
	scalePulse   scaleRule = iota // lerp(scale range, t) * pulse
	scaleSteady                   // lerp(scale range, t)
	scaleTwinkle                  // scale range driven by the twinkle term
)

// spinRule selects the per-frame rotation.
type spinRule uint8

const (
	spinRandom spinRule = iota // (T*speed, T*speed/2, 0), speed sampled once
	spinFixed                  // (T*rate, T*rate, 0)
	spinNone
)

// colorRule selects the per-frame color.
type colorRule uint8

const (
	colorStatic  colorRule = iota // base color assigned at creation
	colorBlend                    // base hue blended toward a star color by t
	colorTwinkle                  // warm pair mixed per frame, brightened by twinkle
)

// categorySpec is the parameter bundle of one category.
type categorySpec struct {
	name  string
	shape treeShape
	scale Range
	// extent stretches the uniform scale into a non-uniform one.
	extent   mgl32.Vec3
	scaling  scaleRule
	spin     spinRule
	spinRate float32
	color    colorRule
	palette  []Color
	// fast selects Config.FastInertia instead of the per-seed slow rule.
	fast  bool
	repel bool
	// seedBase is added to the local index to form the phase seed. Zero
	// means "follow the previous category" for the contiguous main group.
	seedBase int
}

var (
	giftPalette = []Color{
		colorFromHex("#D4AF37"), colorFromHex("#8B0000"), colorFromHex("#006400"), colorFromHex("#191970"),
	}
	candyPalette = []Color{
		colorFromHex("#FF0000"), colorFromHex("#FFFFFF"), colorFromHex("#FF69B4"),
	}
	ornamentPalette = []Color{
		colorFromHex("#C5A059"), colorFromHex("#800020"), colorFromHex("#778899"), colorFromHex("#FFC0CB"),
		colorFromHex("#F7E7CE"), colorFromHex("#FF0000"), colorFromHex("#FFFFFF"),
	}
	starPalette = []Color{
		colorFromHex("#FFD700"), colorFromHex("#FFD700"), colorFromHex("#FFAA00"),
		colorFromHex("#FFF8DC"), colorFromHex("#E0E0E0"), colorFromHex("#FFFFFF"),
	}
	ribbonWarm = [2]Color{colorFromHex("#FFBF00"), colorFromHex("#FFD700")}
)

const (
	ornamentSeedBase = 5000
	ribbonSeedBase   = 10000
)

var unitExtent = mgl32.Vec3{1, 1, 1}

var categorySpecs = [categoryCount]categorySpec{
	CategoryOrb: {
		name: "orb", shape: shapeCone,
		scale: Range{0.1, 0.15}, extent: unitExtent,
		scaling: scalePulse, spin: spinRandom, color: colorBlend,
		repel: true,
	},
	CategoryStar: {
		name: "star", shape: shapeCone,
		scale: Range{0.15, 0.25}, extent: unitExtent,
		scaling: scalePulse, spin: spinRandom, color: colorStatic,
		palette: []Color{ColorWhite.Scale(3)},
		fast:    true,
	},
	CategoryGift: {
		name: "gift", shape: shapeCone,
		scale: Range{0.2, 0.4}, extent: unitExtent,
		scaling: scalePulse, spin: spinRandom, color: colorStatic,
		palette: giftPalette,
	},
	CategoryCandy: {
		name: "candy", shape: shapeCone,
		scale: Range{0.15, 0.35}, extent: mgl32.Vec3{0.5, 3, 0.5},
		scaling: scalePulse, spin: spinRandom, color: colorStatic,
		palette: candyPalette,
	},
	CategoryOrnament: {
		name: "ornament", shape: shapeOrnamentSpiral,
		scale: Range{0.4, 0.6}, extent: unitExtent,
		scaling: scaleSteady, spin: spinFixed, spinRate: 0.5, color: colorStatic,
		palette:  ornamentPalette,
		repel:    true,
		seedBase: ornamentSeedBase,
	},
	CategoryRibbon: {
		name: "ribbon", shape: shapeRibbonSpiral,
		scale: Range{0.1, 0.2}, extent: unitExtent,
		scaling: scaleTwinkle, spin: spinNone, color: colorTwinkle,
		fast:     true,
		seedBase: ribbonSeedBase,
	},
}
