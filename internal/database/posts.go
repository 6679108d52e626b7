// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/quill/internal/database/query"
	"github.com/tomtom215/quill/internal/recommend"
)

const postColumns = `p.id, p.member_id, p.title, p.content, p.view_count, p.created_at`

var _ recommend.DataProvider = (*DB)(nil)

func scanPost(rows *sql.Rows) (recommend.Post, error) {
	var p recommend.Post
	if err := rows.Scan(&p.ID, &p.MemberID, &p.Title, &p.Content, &p.ViewCount, &p.CreatedAt); err != nil {
		return recommend.Post{}, fmt.Errorf("scan post: %w", err)
	}
	return p, nil
}

// FetchPostsByIDs returns the posts among ids that exist, ordered by id.
func (db *DB) FetchPostsByIDs(ctx context.Context, ids []int64) (posts []recommend.Post, err error) {
	defer observe("select", "posts", time.Now(), &err)

	if len(ids) == 0 {
		return []recommend.Post{}, nil
	}

	where, args := query.NewWhereBuilder().In("p.id", ids).BuildWithPrefix()
	q := fmt.Sprintf(`SELECT %s FROM posts p %s ORDER BY p.id`, postColumns, where)

	posts, err = queryAndScan(ctx, db.conn, q, args, scanPost)
	if err != nil {
		return nil, fmt.Errorf("fetch posts by ids: %w", err)
	}
	return db.withTagIDs(ctx, posts)
}

// FetchPostsByTag returns posts carrying tagID, most viewed first, newest
// first among equal view counts.
func (db *DB) FetchPostsByTag(ctx context.Context, tagID int64, q recommend.PostQuery) (posts []recommend.Post, err error) {
	defer observe("select", "post_tags", time.Now(), &err)

	where, args := query.NewWhereBuilder().
		AddClause("pt.tag_id = ?", tagID).
		NotIn("p.id", q.ExcludeIDs).
		BuildWithPrefix()

	stmt := fmt.Sprintf(`SELECT %s FROM posts p
		JOIN post_tags pt ON pt.post_id = p.id
		%s
		ORDER BY p.view_count DESC, p.created_at DESC, p.id`, postColumns, where)
	if q.Limit > 0 {
		stmt += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	posts, err = queryAndScan(ctx, db.conn, stmt, args, scanPost)
	if err != nil {
		return nil, fmt.Errorf("fetch posts for tag %d: %w", tagID, err)
	}
	return db.withTagIDs(ctx, posts)
}

// FetchRelatedPosts returns other posts sharing a tag with postID, most
// viewed first. A post sharing several tags appears once per shared tag.
func (db *DB) FetchRelatedPosts(ctx context.Context, postID int64) (posts []recommend.Post, err error) {
	defer observe("select", "post_tags", time.Now(), &err)

	stmt := fmt.Sprintf(`SELECT %s FROM post_tags src
		JOIN post_tags pt ON pt.tag_id = src.tag_id AND pt.post_id <> src.post_id
		JOIN posts p ON p.id = pt.post_id
		WHERE src.post_id = ?
		ORDER BY p.view_count DESC, p.id, pt.tag_id`, postColumns)

	posts, err = queryAndScan(ctx, db.conn, stmt, []interface{}{postID}, scanPost)
	if err != nil {
		return nil, fmt.Errorf("fetch related posts of %d: %w", postID, err)
	}
	return db.withTagIDs(ctx, posts)
}

// FetchAllPosts returns every post ordered by id.
func (db *DB) FetchAllPosts(ctx context.Context) (posts []recommend.Post, err error) {
	defer observe("select", "posts", time.Now(), &err)

	stmt := fmt.Sprintf(`SELECT %s FROM posts p ORDER BY p.id`, postColumns)
	posts, err = queryAndScan(ctx, db.conn, stmt, nil, scanPost)
	if err != nil {
		return nil, fmt.Errorf("fetch all posts: %w", err)
	}
	return db.withTagIDs(ctx, posts)
}

// FetchLatestPosts returns up to limit posts, newest first.
func (db *DB) FetchLatestPosts(ctx context.Context, limit int) (posts []recommend.Post, err error) {
	defer observe("select", "posts", time.Now(), &err)

	posts, err = db.fetchPostsOrdered(ctx, "p.created_at DESC, p.id DESC", limit)
	if err != nil {
		return nil, fmt.Errorf("fetch latest posts: %w", err)
	}
	return db.withTagIDs(ctx, posts)
}

// FetchTopViewedPosts returns up to limit posts, most viewed first and
// newest first among equal view counts.
func (db *DB) FetchTopViewedPosts(ctx context.Context, limit int) (posts []recommend.Post, err error) {
	defer observe("select", "posts", time.Now(), &err)

	posts, err = db.fetchPostsOrdered(ctx, "p.view_count DESC, p.created_at DESC, p.id DESC", limit)
	if err != nil {
		return nil, fmt.Errorf("fetch top viewed posts: %w", err)
	}
	return db.withTagIDs(ctx, posts)
}

// fetchPostsOrdered runs a limited listing. orderBy is a constant from
// this file, never caller input.
func (db *DB) fetchPostsOrdered(ctx context.Context, orderBy string, limit int) ([]recommend.Post, error) {
	if limit <= 0 {
		return []recommend.Post{}, nil
	}
	stmt := fmt.Sprintf(`SELECT %s FROM posts p ORDER BY %s LIMIT ?`, postColumns, orderBy)
	return queryAndScan(ctx, db.conn, stmt, []interface{}{limit}, scanPost)
}

// FetchInteractionsForUser returns every interaction of the member in
// insertion order.
func (db *DB) FetchInteractionsForUser(ctx context.Context, userID int64) (out []recommend.Interaction, err error) {
	defer observe("select", "interactions", time.Now(), &err)

	out, err = queryAndScan(ctx, db.conn,
		`SELECT member_id, post_id, action, weight, created_at
		FROM interactions WHERE member_id = ? ORDER BY id`,
		[]interface{}{userID},
		func(rows *sql.Rows) (recommend.Interaction, error) {
			var in recommend.Interaction
			var action string
			if err := rows.Scan(&in.MemberID, &in.PostID, &action, &in.Weight, &in.CreatedAt); err != nil {
				return recommend.Interaction{}, fmt.Errorf("scan interaction: %w", err)
			}
			in.Action = recommend.ActionKind(action)
			return in, nil
		})
	if err != nil {
		return nil, fmt.Errorf("fetch interactions of %d: %w", userID, err)
	}
	if out == nil {
		out = []recommend.Interaction{}
	}
	return out, nil
}

// withTagIDs fills TagIDs of posts from post_tags.
func (db *DB) withTagIDs(ctx context.Context, posts []recommend.Post) ([]recommend.Post, error) {
	if len(posts) == 0 {
		return []recommend.Post{}, nil
	}

	seen := make(map[int64]struct{}, len(posts))
	ids := make([]int64, 0, len(posts))
	for i := range posts {
		if _, dup := seen[posts[i].ID]; dup {
			continue
		}
		seen[posts[i].ID] = struct{}{}
		ids = append(ids, posts[i].ID)
	}

	where, args := query.NewWhereBuilder().In("post_id", ids).BuildWithPrefix()
	type pair struct{ postID, tagID int64 }
	pairs, err := queryAndScan(ctx, db.conn,
		fmt.Sprintf(`SELECT post_id, tag_id FROM post_tags %s ORDER BY post_id, tag_id`, where),
		args,
		func(rows *sql.Rows) (pair, error) {
			var p pair
			err := rows.Scan(&p.postID, &p.tagID)
			return p, err
		})
	if err != nil {
		return nil, fmt.Errorf("fetch post tags: %w", err)
	}

	byPost := make(map[int64][]int64, len(ids))
	for _, p := range pairs {
		byPost[p.postID] = append(byPost[p.postID], p.tagID)
	}
	for i := range posts {
		posts[i].TagIDs = append([]int64(nil), byPost[posts[i].ID]...)
	}
	return posts, nil
}
