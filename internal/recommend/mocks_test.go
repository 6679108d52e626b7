// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package recommend

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/quill/internal/embedding"
	"github.com/tomtom215/quill/internal/similarity"
	"github.com/tomtom215/quill/internal/vectorindex"
)

const testDim = 16

// mockDataProvider serves posts and interactions from maps.
type mockDataProvider struct {
	mu           sync.Mutex
	posts        map[int64]Post
	tagPosts     map[int64][]int64
	related      map[int64][]int64
	interactions map[int64][]Interaction

	fetchErr       error
	interactionErr error
	tagQueries     []PostQuery
}

func newMockDataProvider() *mockDataProvider {
	return &mockDataProvider{
		posts:        make(map[int64]Post),
		tagPosts:     make(map[int64][]int64),
		related:      make(map[int64][]int64),
		interactions: make(map[int64][]Interaction),
	}
}

func (m *mockDataProvider) addPost(p Post) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts[p.ID] = p
}

func (m *mockDataProvider) FetchPostsByIDs(_ context.Context, ids []int64) ([]Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	var out []Post
	// reverse order so callers cannot rely on it
	for i := len(ids) - 1; i >= 0; i-- {
		if p, ok := m.posts[ids[i]]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockDataProvider) FetchPostsByTag(_ context.Context, tagID int64, q PostQuery) ([]Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	m.tagQueries = append(m.tagQueries, q)
	excluded := make(map[int64]bool, len(q.ExcludeIDs))
	for _, id := range q.ExcludeIDs {
		excluded[id] = true
	}
	var out []Post
	for _, id := range m.tagPosts[tagID] {
		if excluded[id] {
			continue
		}
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
		out = append(out, m.posts[id])
	}
	return out, nil
}

func (m *mockDataProvider) FetchRelatedPosts(_ context.Context, postID int64) ([]Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	var out []Post
	for _, id := range m.related[postID] {
		out = append(out, m.posts[id])
	}
	return out, nil
}

func (m *mockDataProvider) FetchInteractionsForUser(_ context.Context, userID int64) ([]Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.interactionErr != nil {
		return nil, m.interactionErr
	}
	return append([]Interaction(nil), m.interactions[userID]...), nil
}

func (m *mockDataProvider) FetchAllPosts(_ context.Context) ([]Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	out := make([]Post, 0, len(m.posts))
	for _, p := range m.posts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockDataProvider) FetchLatestPosts(_ context.Context, limit int) ([]Post, error) {
	return m.sortedPosts(limit, func(a, b Post) bool { return a.CreatedAt.After(b.CreatedAt) })
}

func (m *mockDataProvider) FetchTopViewedPosts(_ context.Context, limit int) ([]Post, error) {
	return m.sortedPosts(limit, func(a, b Post) bool { return a.ViewCount > b.ViewCount })
}

func (m *mockDataProvider) sortedPosts(limit int, less func(a, b Post) bool) ([]Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	out := make([]Post, 0, len(m.posts))
	for _, p := range m.posts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if less(out[i], out[j]) != less(out[j], out[i]) {
			return less(out[i], out[j])
		}
		return out[i].ID < out[j].ID
	})
	if limit < len(out) {
		out = out[:max(limit, 0)]
	}
	return out, nil
}

// mockTagStore keeps records in insertion order and never overwrites.
type mockTagStore struct {
	mu       sync.Mutex
	records  []TagVectorRecord
	fetchErr error
	fetches  int
}

func (m *mockTagStore) FetchAllTagVectors(context.Context) ([]TagVectorRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return append([]TagVectorRecord(nil), m.records...), nil
}

func (m *mockTagStore) PersistTagVector(_ context.Context, rec TagVectorRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].TagID == rec.TagID {
			return nil
		}
	}
	m.records = append(m.records, rec)
	return nil
}

// addTag stores the hash embedding of name as the tag's vector.
func (m *mockTagStore) addTag(t *testing.T, id int64, name string) {
	t.Helper()
	text, err := similarity.Serialize(embedding.Embed(name, testDim))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	m.records = append(m.records, TagVectorRecord{TagID: id, TagName: name, Vector: text})
}

type testEnv struct {
	engine *Engine
	data   *mockDataProvider
	tags   *mockTagStore
	posts  *vectorindex.FlatIndex
	users  *vectorindex.FlatIndex
}

func newTestEnv(t *testing.T, cfg *Config) *testEnv {
	t.Helper()
	embedder, err := embedding.NewHashEmbedder(testDim, nil)
	if err != nil {
		t.Fatalf("NewHashEmbedder: %v", err)
	}
	posts, err := vectorindex.New("posts", testDim)
	if err != nil {
		t.Fatalf("vectorindex.New: %v", err)
	}
	users, err := vectorindex.New("users", testDim)
	if err != nil {
		t.Fatalf("vectorindex.New: %v", err)
	}

	env := &testEnv{
		data:  newMockDataProvider(),
		tags:  &mockTagStore{},
		posts: posts,
		users: users,
	}
	env.engine, err = NewEngine(cfg, Dependencies{
		Embedder: embedder,
		Posts:    posts,
		Users:    users,
		Data:     env.data,
		Tags:     env.tags,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return env
}

func assertIDs(t *testing.T, got, want []int64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ids = %v, want %v", got, want)
		}
	}
}

func assertStrings(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %q, want %q", got, want)
		}
	}
}

func postIDs(posts []Post) []int64 {
	ids := make([]int64, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	return ids
}
