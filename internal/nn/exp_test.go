package nn

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpPinnedValues(t *testing.T) {
	tests := []struct {
		x    float64
		exp  float64
		tanh float64
		sig  float64
	}{
		{x: 1, exp: 2.718281828459045, tanh: 0.7615941559557649, sig: 0.7310585786300049},
		{x: -2.5, exp: 0.08208499862389879, tanh: -0.9866142981514303, sig: 0.07585818002124355},
		{x: 0.3, exp: 1.3498588075760032, tanh: 0.2913126124515909, sig: 0.574442516811659},
		{x: 0.7, exp: 2.0137527074704766, tanh: 0.6043677771171635, sig: 0.6681877721681662},
		{x: 1e-9, exp: 1.000000001, tanh: 1e-9, sig: 0.50000000025},
		{x: 20, exp: 485165195.4097903, tanh: 1, sig: 0.9999999979388463},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.exp, Exp(tt.x), "Exp(%v)", tt.x)
		assert.Equal(t, tt.tanh, Tanh(tt.x), "Tanh(%v)", tt.x)
		assert.Equal(t, tt.sig, Sigmoid(tt.x), "Sigmoid(%v)", tt.x)
	}
}

func TestExpSpecialCases(t *testing.T) {
	assert.True(t, math.IsNaN(Exp(math.NaN())))
	assert.True(t, math.IsInf(Exp(math.Inf(1)), 1))
	assert.Equal(t, 0.0, Exp(math.Inf(-1)))
	assert.True(t, math.IsInf(Exp(710), 1))
	assert.Equal(t, 0.0, Exp(-746))
	assert.Equal(t, 1.0, Exp(0))

	assert.True(t, math.IsNaN(Tanh(math.NaN())))
	assert.Equal(t, 1.0, Tanh(math.Inf(1)))
	assert.Equal(t, -1.0, Tanh(math.Inf(-1)))
	assert.True(t, math.Signbit(Tanh(math.Copysign(0, -1))))
	assert.Equal(t, 0.0, Sigmoid(math.Inf(-1)))
	assert.Equal(t, 1.0, Sigmoid(math.Inf(1)))
}

func TestExpTracksMath(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for range 10000 {
		x := rng.Float64()*100 - 50
		want := math.Exp(x)
		assert.InEpsilon(t, want, Exp(x), 1e-15, "Exp(%v)", x)

		y := rng.Float64()*10 - 5
		assert.InDelta(t, math.Tanh(y), Tanh(y), 1e-15, "Tanh(%v)", y)
	}
}
