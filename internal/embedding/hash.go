// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package embedding

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// HashModel is the Model() of HashEmbedder.
const HashModel = "hash-blake2b-512"

// HashEmbedder derives vectors from a BLAKE2b-512 digest of the text.
//
// Component i is digest[i]/255 while i is within the digest; past the end
// the digest is reused cyclically and offset by i, so long vectors do not
// simply repeat. Every component lies in [0,1].
type HashEmbedder struct {
	dim int
	key []byte
}

// NewHashEmbedder creates an embedder producing dim-length vectors. key is
// optional; a non-empty key gives a different (but still deterministic)
// vector family, and must be at most 64 bytes.
func NewHashEmbedder(dim int, key []byte) (*HashEmbedder, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("dimension must be positive, got %d", dim)
	}
	if len(key) > blake2b.Size {
		return nil, fmt.Errorf("key must be at most %d bytes, got %d", blake2b.Size, len(key))
	}
	return &HashEmbedder{dim: dim, key: append([]byte(nil), key...)}, nil
}

// Embed returns the vector for text. Empty and very long input are fine.
func (h *HashEmbedder) Embed(text string) ([]float32, error) {
	digest, err := h.digest(text)
	if err != nil {
		return nil, err
	}
	return expand(digest, h.dim), nil
}

// Dimension returns the vector length.
func (h *HashEmbedder) Dimension() int { return h.dim }

// Model returns HashModel.
func (h *HashEmbedder) Model() string { return HashModel }

func (h *HashEmbedder) digest(text string) ([]byte, error) {
	hasher, err := blake2b.New512(h.key)
	if err != nil {
		return nil, fmt.Errorf("init blake2b: %w", err)
	}
	if _, err := hasher.Write([]byte(text)); err != nil {
		return nil, fmt.Errorf("hash text: %w", err)
	}
	sum := hasher.Sum(nil)
	if len(sum) == 0 {
		return nil, errors.New("empty digest")
	}
	return sum, nil
}

func expand(digest []byte, dim int) []float32 {
	vec := make([]float32, dim)
	n := len(digest)
	for i := range vec {
		if i < n {
			vec[i] = float32(digest[i]) / 255
			continue
		}
		vec[i] = float32((int(digest[i%n])+i)%256) / 255
	}
	return vec
}

// Embed hashes text into a dim-length vector with an unkeyed HashEmbedder.
// It panics if dim is not positive.
func Embed(text string, dim int) []float32 {
	if dim <= 0 {
		panic(fmt.Sprintf("embedding: dimension must be positive, got %d", dim))
	}
	sum := blake2b.Sum512([]byte(text))
	return expand(sum[:], dim)
}
