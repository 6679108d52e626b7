// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package recommend

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/quill/internal/embedding"
	"github.com/tomtom215/quill/internal/similarity"
	"github.com/tomtom215/quill/internal/validation"
	"github.com/tomtom215/quill/internal/vectorindex"
)

func TestNewEngine_Dependencies(t *testing.T) {
	embedder, _ := embedding.NewHashEmbedder(testDim, nil)
	posts, _ := vectorindex.New("posts", testDim)
	users, _ := vectorindex.New("users", testDim)
	narrow, _ := vectorindex.New("narrow", testDim/2)
	data := newMockDataProvider()
	tags := &mockTagStore{}

	tests := []struct {
		name    string
		cfg     *Config
		deps    Dependencies
		wantErr error
	}{
		{
			name: "complete",
			deps: Dependencies{Embedder: embedder, Posts: posts, Users: users, Data: data, Tags: tags},
		},
		{
			name:    "missing data provider",
			deps:    Dependencies{Embedder: embedder, Posts: posts, Users: users, Tags: tags},
			wantErr: ErrNoDataProvider,
		},
		{
			name:    "missing embedder",
			deps:    Dependencies{Posts: posts, Users: users, Data: data, Tags: tags},
			wantErr: errAny,
		},
		{
			name:    "missing tag store",
			deps:    Dependencies{Embedder: embedder, Posts: posts, Users: users, Data: data},
			wantErr: errAny,
		},
		{
			name:    "dimension mismatch",
			deps:    Dependencies{Embedder: embedder, Posts: posts, Users: narrow, Data: data, Tags: tags},
			wantErr: errAny,
		},
		{
			name:    "invalid config",
			cfg:     &Config{UserUpdateMode: "random"},
			deps:    Dependencies{Embedder: embedder, Posts: posts, Users: users, Data: data, Tags: tags},
			wantErr: errAny,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := NewEngine(tt.cfg, tt.deps, zerolog.Nop())
			switch {
			case tt.wantErr == nil:
				if err != nil {
					t.Fatalf("NewEngine: %v", err)
				}
				if engine == nil {
					t.Fatal("NewEngine returned nil engine")
				}
			case tt.wantErr == errAny:
				if err == nil {
					t.Fatal("expected error")
				}
			default:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
			}
		})
	}
}

var errAny = errors.New("any error")

func TestSuggestTags_NoTagVectorsReturnsDefaults(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	tests := []struct {
		maxTags int
		want    []string
	}{
		{5, []string{"ai", "머신러닝", "딥러닝", "Python", "데이터분석"}},
		{3, []string{"ai", "머신러닝", "딥러닝"}},
		{7, []string{"ai", "머신러닝", "딥러닝", "Python", "데이터분석"}},
		{0, []string{}},
	}
	for _, tt := range tests {
		got := env.engine.SuggestTags(ctx, "딥러닝 모델 학습 방법", tt.maxTags)
		assertStrings(t, got, tt.want)
	}
}

func TestSuggestTags_RanksThenPads(t *testing.T) {
	env := newTestEnv(t, nil)
	env.tags.addTag(t, 1, "rust")
	env.tags.addTag(t, 2, "golang")

	got := env.engine.SuggestTags(context.Background(), "golang", 4)
	if len(got) != 4 {
		t.Fatalf("got %q, want 4 tags", got)
	}
	if got[0] != "golang" || got[1] != "rust" {
		t.Errorf("ranked tags = %q, want golang then rust", got[:2])
	}
	assertStrings(t, got[2:], []string{"ai", "머신러닝"})
}

func TestSuggestTags_PaddingSkipsChosenDefaults(t *testing.T) {
	env := newTestEnv(t, nil)
	env.tags.addTag(t, 1, "ai")

	got := env.engine.SuggestTags(context.Background(), "ai", 3)
	assertStrings(t, got, []string{"ai", "머신러닝", "딥러닝"})
}

func TestSuggestTags_StoreErrorDegrades(t *testing.T) {
	env := newTestEnv(t, nil)
	env.tags.addTag(t, 1, "golang")
	env.tags.fetchErr = errors.New("store offline")

	got := env.engine.SuggestTags(context.Background(), "golang", 2)
	assertStrings(t, got, []string{"ai", "머신러닝"})
}

func TestSuggestTags_SkipsBadRecords(t *testing.T) {
	env := newTestEnv(t, nil)
	env.tags.records = append(env.tags.records,
		TagVectorRecord{TagID: 1, TagName: "broken", Vector: "not a vector"},
		TagVectorRecord{TagID: 2, TagName: "short", Vector: "[0.5, 0.5]"},
	)
	env.tags.addTag(t, 3, "golang")

	got := env.engine.SuggestTags(context.Background(), "anything", 1)
	assertStrings(t, got, []string{"golang"})
}

func TestSuggestTags_TagCacheServesRepeatLookups(t *testing.T) {
	env := newTestEnv(t, nil)
	env.tags.addTag(t, 1, "golang")

	for i := 0; i < 3; i++ {
		env.engine.SuggestTags(context.Background(), "golang", 1)
	}
	if got := env.engine.tagCache.Len(); got != 1 {
		t.Errorf("cached tag vectors = %d, want 1", got)
	}
	if env.tags.fetches != 3 {
		t.Errorf("store fetches = %d, want 3", env.tags.fetches)
	}
}

func TestSuggestTagsForPost(t *testing.T) {
	env := newTestEnv(t, nil)
	env.tags.addTag(t, 1, "golang")
	env.tags.addTag(t, 2, "rust")
	env.data.addPost(Post{ID: 7, Title: "borrow checker", Content: "rust"})
	ctx := context.Background()

	got, err := env.engine.SuggestTagsForPost(ctx, 7, 5)
	if err != nil {
		t.Fatalf("SuggestTagsForPost: %v", err)
	}
	assertStrings(t, got, []string{"rust", "golang"})

	if !env.posts.Contains(7) {
		t.Error("post 7 should be indexed after lazy embedding")
	}

	got, err = env.engine.SuggestTagsForPost(ctx, 7, 1)
	if err != nil {
		t.Fatalf("SuggestTagsForPost: %v", err)
	}
	assertStrings(t, got, []string{"rust"})

	if _, err := env.engine.SuggestTagsForPost(ctx, 99, 3); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("err = %v, want ErrPostNotFound", err)
	}
}

func TestEnsureTagVectors(t *testing.T) {
	env := newTestEnv(t, nil)
	env.tags.addTag(t, 1, "golang")
	ctx := context.Background()

	created, err := env.engine.EnsureTagVectors(ctx, []Tag{
		{ID: 1, Name: "golang"},
		{ID: 2, Name: "rust"},
		{ID: 3, Name: "python"},
		{ID: 2, Name: "rust"},
	})
	if err != nil {
		t.Fatalf("EnsureTagVectors: %v", err)
	}
	if created != 2 {
		t.Errorf("created = %d, want 2", created)
	}
	if len(env.tags.records) != 3 {
		t.Fatalf("records = %d, want 3", len(env.tags.records))
	}

	rec := env.tags.records[1]
	vec, err := similarity.Deserialize(rec.Vector)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	want := embedding.Embed("rust", testDim)
	for i := range want {
		if vec[i] != want[i] {
			t.Fatalf("tag vector for %q differs at %d", rec.TagName, i)
		}
	}

	created, err = env.engine.EnsureTagVectors(ctx, []Tag{{ID: 3, Name: "python"}})
	if err != nil || created != 0 {
		t.Errorf("second call created %d (err %v), want 0", created, err)
	}
}

func TestRecommendForUser_NearestPostsWithoutTags(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	for i, content := range []string{"alpha", "beta", "gamma"} {
		p := Post{ID: int64(i + 1), Title: content, Content: content}
		env.data.addPost(p)
		if err := env.engine.IndexPost(context.Background(), p); err != nil {
			t.Fatalf("IndexPost: %v", err)
		}
	}
	if err := env.users.Add(9, embedding.Embed("beta", testDim)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	rec, err := env.engine.RecommendForUser(ctx, 9, 1)
	if err != nil {
		t.Fatalf("RecommendForUser: %v", err)
	}
	assertIDs(t, rec.PostIDs(), []int64{2})
	if rec.TagName != nil || rec.Similarity != nil {
		t.Error("tag fields should be nil without tag vectors")
	}

	rec, err = env.engine.RecommendForUser(ctx, 9, 10)
	if err != nil {
		t.Fatalf("RecommendForUser: %v", err)
	}
	if len(rec.Posts) != 3 || rec.Posts[0].ID != 2 {
		t.Errorf("posts = %v, want 3 posts starting with 2", rec.PostIDs())
	}

	rec, err = env.engine.RecommendForUser(ctx, 9, 0)
	if err != nil {
		t.Fatalf("RecommendForUser: %v", err)
	}
	if len(rec.Posts) != 0 {
		t.Errorf("topN 0 returned %d posts", len(rec.Posts))
	}
}

func seedTaggedPosts(t *testing.T, env *testEnv) {
	t.Helper()
	env.tags.addTag(t, 1, "golang")
	env.tags.addTag(t, 2, "rust")
	env.tags.addTag(t, 3, "python")
	for id := int64(10); id <= 13; id++ {
		env.data.addPost(Post{ID: id, Title: "post", Content: strings.Repeat("x", int(id))})
	}
	env.data.tagPosts[1] = []int64{10, 11}
	env.data.tagPosts[2] = []int64{11, 12}
	env.data.tagPosts[3] = []int64{13}
	if err := env.users.Add(9, embedding.Embed("golang", testDim)); err != nil {
		t.Fatalf("Add: %v", err)
	}
}

func TestRecommendForUser_DominantTag(t *testing.T) {
	env := newTestEnv(t, nil)
	seedTaggedPosts(t, env)

	rec, err := env.engine.RecommendForUser(context.Background(), 9, 2)
	if err != nil {
		t.Fatalf("RecommendForUser: %v", err)
	}
	assertIDs(t, rec.PostIDs(), []int64{10, 11})
	if rec.TagName == nil || *rec.TagName != "golang" {
		t.Fatalf("TagName = %v, want golang", rec.TagName)
	}
	if rec.Similarity == nil || math.Abs(*rec.Similarity-1) > 1e-6 {
		t.Errorf("Similarity = %v, want 1", rec.Similarity)
	}
	if len(rec.PostSimilarities) != 2 {
		t.Fatalf("PostSimilarities = %d entries, want 2", len(rec.PostSimilarities))
	}
	for i, s := range rec.PostSimilarities {
		if s == nil {
			t.Errorf("PostSimilarities[%d] is nil", i)
		}
	}
}

func TestRecommendForUser_ExtraTagsFillShortList(t *testing.T) {
	env := newTestEnv(t, nil)
	seedTaggedPosts(t, env)

	rec, err := env.engine.RecommendForUser(context.Background(), 9, 10)
	if err != nil {
		t.Fatalf("RecommendForUser: %v", err)
	}
	ids := rec.PostIDs()
	if len(ids) != 4 {
		t.Fatalf("ids = %v, want 4 posts", ids)
	}
	assertIDs(t, ids[:2], []int64{10, 11})
	rest := map[int64]bool{ids[2]: true, ids[3]: true}
	if !rest[12] || !rest[13] {
		t.Errorf("ids = %v, want 12 and 13 after the dominant tag", ids)
	}

	for _, q := range env.data.tagQueries[1:] {
		if len(q.ExcludeIDs) < 2 {
			t.Errorf("runner-up query excludes %v, want at least the dominant posts", q.ExcludeIDs)
		}
	}
}

func TestRecommendForUser_NoExtraTags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExtraTagCount = 0
	env := newTestEnv(t, cfg)
	seedTaggedPosts(t, env)

	rec, err := env.engine.RecommendForUser(context.Background(), 9, 10)
	if err != nil {
		t.Fatalf("RecommendForUser: %v", err)
	}
	assertIDs(t, rec.PostIDs(), []int64{10, 11})
}

func TestRecommendForUser_CreatesUserVector(t *testing.T) {
	env := newTestEnv(t, nil)

	if _, err := env.engine.RecommendForUser(context.Background(), 42, 3); err != nil {
		t.Fatalf("RecommendForUser: %v", err)
	}
	got, ok := env.engine.UserVector(42)
	if !ok {
		t.Fatal("user 42 should have a vector")
	}
	want := embedding.Embed("user:42", testDim)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("user vector differs at %d", i)
		}
	}
}

func TestRecommendForUser_DataError(t *testing.T) {
	env := newTestEnv(t, nil)
	seedTaggedPosts(t, env)
	env.data.fetchErr = errors.New("db down")

	if _, err := env.engine.RecommendForUser(context.Background(), 9, 3); err == nil {
		t.Error("expected error from data provider")
	}
}

// blendOnce mirrors the per-interaction update.
func blendOnce(u, p []float32, w float64) []float32 {
	out := make([]float32, len(u))
	for i := range u {
		out[i] = float32((1-w)*float64(u[i]) + w*float64(p[i]))
	}
	return out
}

func TestUpdateUserEmbedding_SequentialLikes(t *testing.T) {
	env := newTestEnv(t, nil)
	env.data.addPost(Post{ID: 5, Title: "five", Content: "post five"})
	env.data.interactions[1] = []Interaction{
		{MemberID: 1, PostID: 5, Action: ActionLike},
		{MemberID: 1, PostID: 5, Action: ActionLike},
	}

	if err := env.engine.UpdateUserEmbedding(context.Background(), 1); err != nil {
		t.Fatalf("UpdateUserEmbedding: %v", err)
	}
	got, ok := env.engine.UserVector(1)
	if !ok {
		t.Fatal("user 1 should have a vector")
	}

	w := env.engine.Config().Weights.For(ActionLike)
	p := embedding.Embed("post five", testDim)
	zero := make([]float32, testDim)
	want := blendOnce(blendOnce(zero, p, w), p, w)
	combined := blendOnce(zero, p, 2*w)

	differs := false
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("component %d = %v, want %v", i, got[i], want[i])
		}
		if got[i] != combined[i] {
			differs = true
		}
	}
	if !differs {
		t.Error("two sequential updates should differ from one combined update")
	}
}

func TestUpdateUserEmbedding_StartsFromCurrentVector(t *testing.T) {
	env := newTestEnv(t, nil)
	env.data.addPost(Post{ID: 5, Content: "post five"})
	env.data.interactions[1] = []Interaction{{MemberID: 1, PostID: 5, Action: ActionComment}}
	start := embedding.Embed("start", testDim)
	if err := env.users.Add(1, start); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := env.engine.UpdateUserEmbedding(context.Background(), 1); err != nil {
		t.Fatalf("UpdateUserEmbedding: %v", err)
	}
	got, _ := env.engine.UserVector(1)
	want := blendOnce(start, embedding.Embed("post five", testDim), env.engine.Config().Weights.For(ActionComment))
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("component %d = %v, want %v", i, got[i], want[i])
		}
	}
	if env.users.Len() != 1 {
		t.Errorf("user index holds %d vectors, want 1", env.users.Len())
	}
}

func TestUpdateUserEmbedding_WeightedMean(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UserUpdateMode = UpdateWeightedMean
	env := newTestEnv(t, cfg)
	env.data.addPost(Post{ID: 5, Content: "post five"})
	env.data.addPost(Post{ID: 6, Content: "post six"})

	forward := []Interaction{
		{MemberID: 1, PostID: 5, Action: ActionLike},
		{MemberID: 1, PostID: 6, Action: ActionComment},
	}
	env.data.interactions[1] = forward
	env.data.interactions[2] = []Interaction{forward[1], forward[0]}

	ctx := context.Background()
	for _, user := range []int64{1, 2} {
		if err := env.engine.UpdateUserEmbedding(ctx, user); err != nil {
			t.Fatalf("UpdateUserEmbedding(%d): %v", user, err)
		}
	}

	wl := cfg.Weights.For(ActionLike)
	wc := cfg.Weights.For(ActionComment)
	p5 := embedding.Embed("post five", testDim)
	p6 := embedding.Embed("post six", testDim)

	a, _ := env.engine.UserVector(1)
	b, _ := env.engine.UserVector(2)
	for i := 0; i < testDim; i++ {
		want := (wl*float64(p5[i]) + wc*float64(p6[i])) / (wl + wc)
		if math.Abs(float64(a[i])-want) > 1e-6 {
			t.Fatalf("component %d = %v, want %v", i, a[i], want)
		}
		if math.Abs(float64(a[i]-b[i])) > 1e-6 {
			t.Fatalf("order changed component %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestUpdateUserEmbedding_NoInteractions(t *testing.T) {
	env := newTestEnv(t, nil)

	if err := env.engine.UpdateUserEmbedding(context.Background(), 3); err != nil {
		t.Fatalf("UpdateUserEmbedding: %v", err)
	}
	if _, ok := env.engine.UserVector(3); ok {
		t.Error("user without interactions should not get a vector")
	}
}

func TestUpdateUserEmbedding_UnknownActionIgnored(t *testing.T) {
	env := newTestEnv(t, nil)
	env.data.addPost(Post{ID: 5, Content: "post five"})
	env.data.interactions[1] = []Interaction{{MemberID: 1, PostID: 5, Action: "share"}}

	if err := env.engine.UpdateUserEmbedding(context.Background(), 1); err != nil {
		t.Fatalf("UpdateUserEmbedding: %v", err)
	}
	got, _ := env.engine.UserVector(1)
	for i, v := range got {
		if v != 0 {
			t.Fatalf("component %d = %v, want 0", i, v)
		}
	}
}

func TestUpdateUserEmbedding_UnknownPostUsesSyntheticText(t *testing.T) {
	env := newTestEnv(t, nil)
	env.data.interactions[1] = []Interaction{{MemberID: 1, PostID: 77, Action: ActionView}}

	if err := env.engine.UpdateUserEmbedding(context.Background(), 1); err != nil {
		t.Fatalf("UpdateUserEmbedding: %v", err)
	}
	got, _ := env.engine.UserVector(1)
	want := blendOnce(make([]float32, testDim), embedding.Embed("post:77", testDim), env.engine.Config().Weights.For(ActionView))
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("component %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestUpdateUserEmbedding_FetchError(t *testing.T) {
	env := newTestEnv(t, nil)
	boom := errors.New("db down")
	env.data.interactionErr = boom

	if err := env.engine.UpdateUserEmbedding(context.Background(), 1); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func indexPosts(t *testing.T, env *testEnv, contents ...string) {
	t.Helper()
	for i, content := range contents {
		p := Post{ID: int64(i + 1), Title: "title " + content, Content: content}
		env.data.addPost(p)
		if err := env.engine.IndexPost(context.Background(), p); err != nil {
			t.Fatalf("IndexPost: %v", err)
		}
	}
}

func TestHybridSearch_FallbackTerms(t *testing.T) {
	env := newTestEnv(t, nil)
	indexPosts(t, env, "alpha", "beta", "gamma", "delta")
	ctx := context.Background()

	got, err := env.engine.HybridSearch(ctx, "query", 5, 2)
	if err != nil {
		t.Fatalf("HybridSearch: %v", err)
	}
	first, _ := env.engine.SearchContent(ctx, "query", 4)
	second, _ := env.engine.SearchContent(ctx, "query 머신러닝", 2)
	assertIDs(t, got, append(first, second...))

	if _, ok := env.engine.UserVector(5); ok {
		t.Error("hybrid search must not create a user vector")
	}
}

func TestHybridSearch_PreferredTag(t *testing.T) {
	env := newTestEnv(t, nil)
	indexPosts(t, env, "alpha", "beta", "gamma")
	env.tags.addTag(t, 1, "golang")
	env.tags.addTag(t, 2, "rust")
	if err := env.users.Add(5, embedding.Embed("rust", testDim)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	ctx := context.Background()

	got, err := env.engine.HybridSearch(ctx, "query", 5, 1)
	if err != nil {
		t.Fatalf("HybridSearch: %v", err)
	}
	first, _ := env.engine.SearchContent(ctx, "query", 2)
	second, _ := env.engine.SearchContent(ctx, "query rust", 1)
	assertIDs(t, got, append(first, second...))
}

func TestHybridSearch_LengthBound(t *testing.T) {
	env := newTestEnv(t, nil)
	indexPosts(t, env, "a", "b", "c", "d", "e", "f", "g", "h")

	for _, topN := range []int{0, 1, 3, 5} {
		got, err := env.engine.HybridSearch(context.Background(), "q", 1, topN)
		if err != nil {
			t.Fatalf("HybridSearch: %v", err)
		}
		want := min(2*topN, 8) + min(topN, 8)
		if len(got) != want {
			t.Errorf("topN %d: len = %d, want %d", topN, len(got), want)
		}
	}
}

func TestSearchContent_DropsUnknownPosts(t *testing.T) {
	env := newTestEnv(t, nil)
	indexPosts(t, env, "alpha", "beta")
	if err := env.posts.Add(99, embedding.Embed("orphan", testDim)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := env.engine.SearchContent(context.Background(), "orphan", 3)
	if err != nil {
		t.Fatalf("SearchContent: %v", err)
	}
	for _, id := range got {
		if id == 99 {
			t.Fatalf("ids = %v, unknown post 99 should be dropped", got)
		}
	}
	if len(got) != 2 {
		t.Errorf("ids = %v, want 2", got)
	}
}

func TestRelatedPosts_TagOverlap(t *testing.T) {
	env := newTestEnv(t, nil)
	for id := int64(1); id <= 4; id++ {
		env.data.addPost(Post{ID: id, Title: "p", TagIDs: []int64{1}})
	}
	env.data.related[1] = []int64{2, 3, 2, 1, 4}
	ctx := context.Background()

	tests := []struct {
		page int
		want []int64
	}{
		{1, []int64{2, 3}},
		{2, []int64{4}},
		{3, []int64{}},
	}
	for _, tt := range tests {
		got, err := env.engine.RelatedPosts(ctx, RelatedRequest{PostID: 1, UserID: 8, Page: tt.page, PageSize: 2})
		if err != nil {
			t.Fatalf("RelatedPosts: %v", err)
		}
		if got.Total != 3 {
			t.Errorf("page %d: total = %d, want 3", tt.page, got.Total)
		}
		assertIDs(t, postIDs(got.Posts), tt.want)
	}
}

func TestRelatedPosts_FallsBackToUserRecommendations(t *testing.T) {
	env := newTestEnv(t, nil)
	indexPosts(t, env, "alpha", "beta", "gamma")

	got, err := env.engine.RelatedPosts(context.Background(), RelatedRequest{PostID: 1, UserID: 8, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("RelatedPosts: %v", err)
	}
	if got.Total != 2 {
		t.Fatalf("total = %d, want 2", got.Total)
	}
	for _, p := range got.Posts {
		if p.ID == 1 {
			t.Error("current post must be excluded")
		}
	}
}

func TestRelatedPosts_Errors(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.engine.RelatedPosts(ctx, RelatedRequest{PostID: 404, UserID: 1, Page: 1, PageSize: 10})
	if !errors.Is(err, ErrPostNotFound) {
		t.Errorf("err = %v, want ErrPostNotFound", err)
	}

	_, err = env.engine.RelatedPosts(ctx, RelatedRequest{PostID: 1, UserID: 1, Page: 0, PageSize: 500})
	if !errors.Is(err, validation.ErrValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestWeeklyDigest(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	got, err := env.engine.WeeklyDigest(ctx, 3)
	if err != nil {
		t.Fatalf("WeeklyDigest: %v", err)
	}
	if got != DefaultDigestHeading+"\n" {
		t.Errorf("empty digest = %q", got)
	}

	indexPosts(t, env, "a", "b", "c", "d", "e", "f", "g")
	got, err = env.engine.WeeklyDigest(ctx, 3)
	if err != nil {
		t.Fatalf("WeeklyDigest: %v", err)
	}
	lines := strings.Split(got, "\n")
	if lines[0] != DefaultDigestHeading {
		t.Errorf("heading = %q", lines[0])
	}
	if len(lines) != 6 {
		t.Fatalf("digest has %d lines, want heading plus 5 titles:\n%s", len(lines), got)
	}
	for _, line := range lines[1:] {
		if !strings.HasPrefix(line, "title ") {
			t.Errorf("unexpected digest line %q", line)
		}
	}
}

func TestPostIndexMaintenance(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.data.addPost(Post{ID: 1, Content: "one"})
	env.data.addPost(Post{ID: 2, Content: "two"})

	n, err := env.engine.RebuildPostIndex(ctx)
	if err != nil {
		t.Fatalf("RebuildPostIndex: %v", err)
	}
	if n != 2 || env.posts.Len() != 2 {
		t.Fatalf("indexed %d, index holds %d, want 2", n, env.posts.Len())
	}

	if err := env.engine.IndexPost(ctx, Post{ID: 1, Content: "one, edited"}); err != nil {
		t.Fatalf("IndexPost: %v", err)
	}
	got, _ := env.posts.Reconstruct(1)
	want := embedding.Embed("one, edited", testDim)
	for i := range want {
		if got[i] != want[i] {
			t.Fatal("edited post should replace its vector")
		}
	}
	if env.posts.Len() != 2 {
		t.Errorf("index holds %d, want 2", env.posts.Len())
	}

	if !env.engine.RemovePost(2) {
		t.Error("RemovePost(2) should report true")
	}
	if env.engine.RemovePost(2) {
		t.Error("second RemovePost(2) should report false")
	}
}
