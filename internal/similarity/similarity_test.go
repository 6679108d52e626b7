// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package similarity

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"both zero", []float32{0, 0}, []float32{0, 0}, 0},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosine_Bounds(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for n := 0; n < 500; n++ {
		a := randomVector(r, 32)
		b := randomVector(r, 32)
		c := Cosine(a, b)
		if c < -1 || c > 1 {
			t.Fatalf("Cosine out of bounds: %v", c)
		}
		if self := Cosine(a, a); math.Abs(self-1) > 1e-9 {
			t.Fatalf("Cosine(a, a) = %v, want 1", self)
		}
	}
}

func TestL2Squared(t *testing.T) {
	if got := L2Squared([]float32{0, 0}, []float32{3, 4}); got != 25 {
		t.Errorf("L2Squared() = %v, want 25", got)
	}
	if got := L2Squared([]float32{1.5}, []float32{1.5}); got != 0 {
		t.Errorf("L2Squared() = %v, want 0", got)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	vectors := [][]float32{
		{},
		{0, 1, -1},
		{math.SmallestNonzeroFloat32, math.MaxFloat32, -math.MaxFloat32},
		{0.1, 1.0 / 3, 2.0 / 255, 1e-20, 123456.789},
		randomVector(r, 768),
	}
	for _, v := range vectors {
		text, err := Serialize(v)
		if err != nil {
			t.Fatalf("Serialize(%v): %v", v, err)
		}
		got, err := Deserialize(text)
		if err != nil {
			t.Fatalf("Deserialize(%q): %v", text, err)
		}
		if len(got) != len(v) {
			t.Fatalf("len = %d, want %d", len(got), len(v))
		}
		for i := range v {
			if math.Float32bits(got[i]) != math.Float32bits(v[i]) {
				t.Fatalf("component %d: got %v, want %v (text %q)", i, got[i], v[i], text)
			}
		}
	}
}

func TestSerialize_NonFinite(t *testing.T) {
	for _, bad := range []float32{float32(math.NaN()), float32(math.Inf(1)), float32(math.Inf(-1))} {
		if _, err := Serialize([]float32{1, bad}); !errors.Is(err, ErrNonFinite) {
			t.Errorf("Serialize(%v) err = %v, want ErrNonFinite", bad, err)
		}
	}
}

func TestDeserialize_Invalid(t *testing.T) {
	for _, in := range []string{"", "not json", `{"a":1}`, "null", `["x"]`} {
		if _, err := Deserialize(in); err == nil {
			t.Errorf("Deserialize(%q) should fail", in)
		}
	}
}

func randomVector(r *rand.Rand, n int) []float32 {
	v := make([]float32, n)
	for i := range v {
		v[i] = r.Float32()*2 - 1
	}
	return v
}
