package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodes(t *testing.T) {
	codes := Codes()
	assert.Len(t, codes, 24)
	assert.Equal(t, "A", codes[0])
	assert.Equal(t, "Z", codes[len(codes)-1])
	assert.NotContains(t, codes, "W")
	assert.NotContains(t, codes, "Y")
}

func TestLots(t *testing.T) {
	lots := Lots("A")
	assert.Len(t, lots, 49)
	assert.Equal(t, 1, lots[0])
	assert.Equal(t, 49, lots[48])

	assert.Nil(t, Lots("W"))
	assert.Nil(t, Lots(""))
	assert.Nil(t, Lots("a"))
}

func TestCapacityMatchesLots(t *testing.T) {
	for _, code := range Codes() {
		assert.Len(t, Lots(code), Capacity(code), "block %s", code)
		assert.True(t, Known(code))
	}
	assert.Equal(t, 0, Capacity("W"))
	assert.False(t, Known("W"))
}

func TestMarkers(t *testing.T) {
	ms := Markers()
	assert.Len(t, ms, 400)
	assert.Contains(t, ms, "Verde-1")
	assert.Contains(t, ms, "Azul-100")
	assert.NotContains(t, ms, "Verde-0")
	assert.NotContains(t, ms, "Verde-101")
}
