// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

// Package similarity holds the vector math and the textual vector encoding
// shared by the index, the engine and the tag vector stores.
package similarity

import (
	"errors"
	"fmt"
	"math"

	"github.com/goccy/go-json"
)

// ErrNonFinite is returned when a vector containing NaN or ±Inf is serialized.
var ErrNonFinite = errors.New("vector contains non-finite component")

// Cosine returns the cosine similarity of a and b in [-1, 1]. It is 0 when
// either vector has zero norm or the lengths differ. Accumulation is done in
// float64 and the result is clamped against rounding drift.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	c := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	switch {
	case math.IsNaN(c):
		return 0
	case c > 1:
		return 1
	case c < -1:
		return -1
	}
	return c
}

// L2Squared returns the squared Euclidean distance between a and b, which
// must have the same length.
func L2Squared(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// Serialize encodes vec as a JSON array. Decoding the result with
// Deserialize yields vec exactly.
func Serialize(vec []float32) (string, error) {
	for i, v := range vec {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", fmt.Errorf("%w at index %d", ErrNonFinite, i)
		}
	}
	if vec == nil {
		vec = []float32{}
	}
	b, err := json.Marshal(vec)
	if err != nil {
		return "", fmt.Errorf("encode vector: %w", err)
	}
	return string(b), nil
}

// Deserialize decodes a JSON array produced by Serialize.
func Deserialize(text string) ([]float32, error) {
	var vec []float32
	if err := json.Unmarshal([]byte(text), &vec); err != nil {
		return nil, fmt.Errorf("decode vector: %w", err)
	}
	if vec == nil {
		return nil, errors.New("decode vector: not a JSON array")
	}
	return vec, nil
}
