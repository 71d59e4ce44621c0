// Package blocks holds the fixed community map: which block codes exist,
// how many lots each block has, and the parking-marker catalog.
package blocks

import "fmt"

// capacity maps each block code to its number of lots.
var capacity = map[string]int{
	"A": 49, "B": 36, "C": 16, "D": 26, "E": 18, "F": 29,
	"G": 20, "H": 20, "I": 15, "J": 21, "K": 17, "L": 15,
	"M": 24, "N": 21, "O": 24, "P": 17, "Q": 16, "R": 19,
	"S": 28, "T": 21, "U": 22, "V": 25, "X": 18, "Z": 46,
}

// codes in display order. The community map skips W and Y.
var codes = []string{
	"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L",
	"M", "N", "O", "P", "Q", "R", "S", "T", "U", "V", "X", "Z",
}

// Codes returns all block codes in display order.
func Codes() []string {
	out := make([]string, len(codes))
	copy(out, codes)
	return out
}

// Capacity returns the number of lots in a block, or 0 for unknown codes.
func Capacity(code string) int {
	return capacity[code]
}

// Known reports whether code is a valid block code.
func Known(code string) bool {
	_, ok := capacity[code]
	return ok
}

// Lots returns the lot numbers 1..capacity for a block, or nil for unknown
// codes.
func Lots(code string) []int {
	total := capacity[code]
	if total == 0 {
		return nil
	}
	out := make([]int, total)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// MarkerColors are the prism colors in catalog order.
var MarkerColors = []string{"Verde", "Amarelo", "Marrom", "Azul"}

// markerCount is the number of prisms per color.
const markerCount = 100

// Markers returns the full marker catalog, "Color-N" for every color and
// number 1..100.
func Markers() []string {
	out := make([]string, 0, markerCount*len(MarkerColors))
	for n := 1; n <= markerCount; n++ {
		for _, c := range MarkerColors {
			out = append(out, fmt.Sprintf("%s-%d", c, n))
		}
	}
	return out
}
