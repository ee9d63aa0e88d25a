package layout

import (
	"math"
	"path/filepath"
	"strings"
)

// Placement is the vertical position of the quote block.
type Placement int

const (
	PlacementCenter Placement = iota
	PlacementTop
	PlacementBottom
)

func (p Placement) String() string {
	switch p {
	case PlacementTop:
		return "top"
	case PlacementBottom:
		return "bottom"
	default:
		return "center"
	}
}

// ParsePlacement reads the placement token of a portrait file name: the first
// character after the first underscore of the base name. 't' is top, 'b' is
// bottom, anything else (or no underscore) is center.
func ParsePlacement(filename string) Placement {
	base := filepath.Base(filename)
	_, token, ok := strings.Cut(base, "_")
	if !ok || token == "" {
		return PlacementCenter
	}
	switch token[0] {
	case 't':
		return PlacementTop
	case 'b':
		return PlacementBottom
	default:
		return PlacementCenter
	}
}

// StartY returns the y coordinate of the top of a block of blockHeight pixels
// in an image imageHeight pixels tall. Negative results clamp to zero.
func StartY(p Placement, imageHeight int, blockHeight float64) float64 {
	h := float64(imageHeight)

	var y float64
	switch p {
	case PlacementTop:
		y = float64(imageHeight-imageHeight*4/5) - blockHeight
	case PlacementBottom:
		y = float64(imageHeight-imageHeight/4) - blockHeight
	default:
		y = math.Floor((h-blockHeight)/2) - 30
	}
	// A block taller than the space above its anchor would start off the
	// canvas and lose its first lines; it starts at the top edge instead.
	return max(y, 0)
}
