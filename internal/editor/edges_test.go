package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEdgeSetNames(t *testing.T) {
	assert.Nil(t, EdgeSet(0).Names())
	assert.Equal(t, []string{"left"}, EdgeLeft.Names())
	assert.Equal(t, []string{"right", "top"}, (EdgeRight | EdgeTop).Names())
	assert.Equal(t, []string{"left", "right", "top", "bottom"},
		(EdgeLeft | EdgeRight | EdgeTop | EdgeBottom).Names())
}

func TestParseEdge(t *testing.T) {
	assert.Equal(t, EdgeLeft, ParseEdge("left"))
	assert.Equal(t, EdgeRight, ParseEdge("right"))
	assert.Equal(t, EdgeTop, ParseEdge("top"))
	assert.Equal(t, EdgeBottom, ParseEdge("bottom"))
	assert.Equal(t, EdgeSet(0), ParseEdge("corner"))
}

func TestEdgeSetHas(t *testing.T) {
	s := EdgeLeft | EdgeTop
	assert.True(t, s.Has(EdgeLeft))
	assert.True(t, s.Has(EdgeTop))
	assert.True(t, s.Has(EdgeLeft|EdgeTop))
	assert.False(t, s.Has(EdgeRight))
	assert.False(t, s.Has(EdgeLeft|EdgeRight))
}
