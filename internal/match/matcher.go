package match

import (
	"strings"

	"github.com/vimal-patel-bvi/freedom-vectary/internal/scene"
)

// normalize lowercases s and strips whitespace and underscores, the
// variations exporters most commonly introduce into material names.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r == '_' || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Material returns the candidate material matching the target name and color,
// evaluated as an ordered tier cascade. The first tier producing at least one
// candidate decides; ties resolve to the first candidate in slot order.
// ok is false when no tier matches.
func Material(candidates []scene.Material, targetName, targetColor string) (m scene.Material, ok bool) {
	type tier func(scene.Material) bool

	lowerName := strings.ToLower(targetName)
	normName := normalize(targetName)
	normColor := normalize(targetColor)

	// Tiers 4 and 5 also consider the color's underscore-separated suffix,
	// e.g. "Corde4_pumpkin" -> "pumpkin". Exported variant colors prefix
	// the collection name; slot colors usually carry only the shade.
	var colorSuffix string
	if i := strings.LastIndex(targetColor, "_"); i >= 0 && i+1 < len(targetColor) {
		colorSuffix = strings.ToLower(targetColor[i+1:])
	}
	normSuffix := normalize(colorSuffix)

	tiers := []tier{
		// 1. Exact name equality.
		func(c scene.Material) bool {
			return c.Name == targetName
		},
		// 2. Normalized name equality.
		func(c scene.Material) bool {
			return normName != "" && normalize(c.Name) == normName
		},
		// 3. Case-insensitive substring relation, either direction.
		// Known to be permissive: "Fabric" matches "FabricArmrest" too.
		func(c scene.Material) bool {
			if lowerName == "" {
				return false
			}
			cn := strings.ToLower(c.Name)
			if cn == "" {
				return false
			}
			return strings.Contains(cn, lowerName) || strings.Contains(lowerName, cn) ||
				strings.HasSuffix(cn, lowerName)
		},
		// 4. Normalized color equality, against the full target color or
		// its suffix after the last underscore.
		func(c scene.Material) bool {
			if normColor == "" {
				return false
			}
			cc := normalize(c.Color)
			if cc == "" {
				return false
			}
			return cc == normColor || (normSuffix != "" && cc == normSuffix)
		},
		// 5. Color suffix after the last underscore as a name substring.
		func(c scene.Material) bool {
			return colorSuffix != "" && strings.Contains(strings.ToLower(c.Name), colorSuffix)
		},
	}

	for _, matches := range tiers {
		for _, c := range candidates {
			if matches(c) {
				return c, true
			}
		}
	}
	return scene.Material{}, false
}
