// Package encoder maps secrets of any length onto fixed-width input vectors.
package encoder

// DefaultWidth is the reference input width of a provisioned genome.
const DefaultWidth = 256

// Encode maps each byte b of secret to b/128 - 1, right-pads with zeros up to
// width and drops every byte past width. The scaling is intentionally
// asymmetric: 0 maps to -1.0 and 255 maps to 0.9921875.
func Encode(secret []byte, width int) []float64 {
	if width <= 0 {
		return []float64{}
	}
	out := make([]float64, width)
	n := len(secret)
	if n > width {
		n = width
	}
	for i := 0; i < n; i++ {
		out[i] = float64(secret[i])/128.0 - 1.0
	}
	return out
}

// EncodeString encodes the UTF-8 bytes of secret.
func EncodeString(secret string, width int) []float64 {
	return Encode([]byte(secret), width)
}
