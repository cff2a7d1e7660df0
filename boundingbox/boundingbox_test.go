package boundingbox

import (
	"math"
	"testing"

	"github.com/akavel/polyclip-go"
	"github.com/stretchr/testify/assert"
)

func TestNewIsIdentity(t *testing.T) {
	empty := New()
	assert.True(t, empty.IsEmpty())
	assert.Equal(t, math.Inf(1), empty[0])
	assert.Equal(t, math.Inf(-1), empty[3])

	b := Box{-1, -2, 3, 4}
	assert.Equal(t, b, Union(empty, b))
	assert.Equal(t, b, Union(b, empty))
	assert.Equal(t, "[empty]", empty.String())
}

func TestUnion(t *testing.T) {
	var testData = []struct {
		a, b, result Box
	}{
		{Box{0, 0, 1, 1}, Box{2, 2, 3, 3}, Box{0, 0, 3, 3}},
		{Box{-1, 0, 1, 1}, Box{0, -5, 0.5, 0.5}, Box{-1, -5, 1, 1}},
		{Box{0, 0, 1, 1}, Box{0, 0, 1, 1}, Box{0, 0, 1, 1}},
	}
	for _, td := range testData {
		assert.Equal(t, td.result, Union(td.a, td.b))
		assert.Equal(t, td.result, Union(td.b, td.a))
	}
}

func TestAddPoint(t *testing.T) {
	b := AddPoint(New(), polyclip.Point{X: 1, Y: 2})
	assert.Equal(t, Box{1, 2, 1, 2}, b)
	b = AddPoint(b, polyclip.Point{X: -1, Y: 5})
	assert.Equal(t, Box{-1, 2, 1, 5}, b)
	assert.Equal(t, 2.0, b.Width())
	assert.Equal(t, 3.0, b.Height())
}

func TestTranslateAndUnion(t *testing.T) {
	b := Box{0, 0, 1, 1}
	assert.Equal(t, Union(New(), b), TranslateAndUnion(b, []polyclip.Point{{X: 0, Y: 0}}))

	offsets := []polyclip.Point{{X: 0, Y: 0}, {X: 0, Y: 3}, {X: 3, Y: 0}, {X: 3, Y: 3}}
	assert.Equal(t, Box{0, 0, 4, 4}, TranslateAndUnion(b, offsets))

	assert.True(t, TranslateAndUnion(b, nil).IsEmpty())
	assert.True(t, TranslateAndUnion(New(), offsets).IsEmpty())
}

func TestFromPoints(t *testing.T) {
	points := []polyclip.Point{{X: 1, Y: 1}, {X: -2, Y: 4}, {X: 3, Y: -1}}
	assert.Equal(t, Box{-2, -1, 3, 4}, FromPoints(points))
	assert.True(t, FromPoints(nil).IsEmpty())
}
