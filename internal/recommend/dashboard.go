// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package recommend

import (
	"context"
	"fmt"
	"time"
)

// Dashboard is the home page selection: personalized posts next to the
// newest and the most viewed ones.
type Dashboard struct {
	ForUser *UserRecommendation `json:"user_based"`
	Latest  []Post              `json:"latest"`
	Popular []Post              `json:"popular"`
}

// Dashboard returns up to n posts in each of its three lists. The lists are
// independent, so a post may appear in more than one.
func (e *Engine) Dashboard(ctx context.Context, userID int64, n int) (dash *Dashboard, err error) {
	defer e.observe("dashboard", time.Now(), &err)

	dash = &Dashboard{
		ForUser: &UserRecommendation{Posts: []Post{}},
		Latest:  []Post{},
		Popular: []Post{},
	}
	if n <= 0 {
		return dash, nil
	}

	if dash.ForUser, err = e.RecommendForUser(ctx, userID, n); err != nil {
		return nil, err
	}
	latest, err := e.data.FetchLatestPosts(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("fetch latest posts: %w", err)
	}
	popular, err := e.data.FetchTopViewedPosts(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("fetch top viewed posts: %w", err)
	}
	dash.Latest = capPosts(latest, n)
	dash.Popular = capPosts(popular, n)
	return dash, nil
}

func capPosts(posts []Post, n int) []Post {
	if posts == nil {
		return []Post{}
	}
	if len(posts) > n {
		return posts[:n]
	}
	return posts
}
