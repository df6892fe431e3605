package sqlite

import (
	"math"
	"reflect"
	"testing"
)

func TestVectorCodecRoundTrip(t *testing.T) {
	in := []float32{0.25, -1.5, 0, 3.14159, math.MaxFloat32}
	out := bytesToVector(vectorToBytes(in))
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip = %v, want %v", out, in)
	}
}

func TestBytesToVectorRejectsTruncatedBlob(t *testing.T) {
	if got := bytesToVector([]byte{1, 2, 3}); got != nil {
		t.Errorf("truncated blob = %v, want nil", got)
	}
}

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 1},
		{"opposed", []float32{1, 0}, []float32{-1, 0}, 2},
		{"scaled identical", []float32{2, 0}, []float32{5, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 2},
		{"length mismatch", []float32{1}, []float32{1, 0}, 2},
		{"empty", nil, nil, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineDistance(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosineDistance = %v, want %v", got, tt.want)
			}
		})
	}
}
