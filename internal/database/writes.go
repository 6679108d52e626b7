// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/quill/internal/database/query"
	"github.com/tomtom215/quill/internal/recommend"
)

// NewPost holds the fields of a post to create. A zero CreatedAt means now.
type NewPost struct {
	MemberID  int64
	Title     string
	Content   string
	CreatedAt time.Time
}

// CreatePost inserts a post and returns it with its assigned id.
//
//nolint:gocritic // NewPost passed by value for immutability
func (db *DB) CreatePost(ctx context.Context, np NewPost) (post recommend.Post, err error) {
	defer observe("insert", "posts", time.Now(), &err)

	createdAt := np.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var id int64
	err = db.conn.QueryRowContext(ctx,
		`INSERT INTO posts (id, member_id, title, content, view_count, created_at)
		VALUES (nextval('posts_id_seq'), ?, ?, ?, 0, ?)
		RETURNING id`,
		np.MemberID, np.Title, np.Content, createdAt).Scan(&id)
	if err != nil {
		return recommend.Post{}, fmt.Errorf("create post: %w", err)
	}

	return recommend.Post{
		ID:        id,
		MemberID:  np.MemberID,
		Title:     np.Title,
		Content:   np.Content,
		CreatedAt: createdAt,
		TagIDs:    []int64{},
	}, nil
}

// UpdatePost replaces the title and content of a post.
func (db *DB) UpdatePost(ctx context.Context, postID int64, title, content string) (err error) {
	defer observe("update", "posts", time.Now(), &err)

	res, err := db.conn.ExecContext(ctx,
		`UPDATE posts SET title = ?, content = ? WHERE id = ?`, title, content, postID)
	if err != nil {
		return fmt.Errorf("update post %d: %w", postID, err)
	}
	return requireRow(res, postID)
}

// IncrementViewCount adds one view to a post.
func (db *DB) IncrementViewCount(ctx context.Context, postID int64) (err error) {
	defer observe("update", "posts", time.Now(), &err)

	res, err := db.conn.ExecContext(ctx,
		`UPDATE posts SET view_count = view_count + 1 WHERE id = ?`, postID)
	if err != nil {
		return fmt.Errorf("increment views of post %d: %w", postID, err)
	}
	return requireRow(res, postID)
}

// DeletePost removes a post with its tag mappings and interactions. Tags
// that no other post uses are removed with their vectors.
func (db *DB) DeletePost(ctx context.Context, postID int64) (err error) {
	defer observe("delete", "posts", time.Now(), &err)

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	oldTagIDs, err := postTagIDs(ctx, tx, postID)
	if err != nil {
		return err
	}

	for _, stmt := range []string{
		`DELETE FROM post_tags WHERE post_id = ?`,
		`DELETE FROM interactions WHERE post_id = ?`,
	} {
		if _, err = tx.ExecContext(ctx, stmt, postID); err != nil {
			return fmt.Errorf("delete post %d: %w", postID, err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, postID)
	if err != nil {
		return fmt.Errorf("delete post %d: %w", postID, err)
	}
	if err = requireRow(res, postID); err != nil {
		return err
	}
	if err = deleteOrphanTags(ctx, tx, oldTagIDs); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ReplacePostTags makes tagIDs the exact tag set of a post. Tags the post
// drops that no other post uses are removed with their vectors.
func (db *DB) ReplacePostTags(ctx context.Context, postID int64, tagIDs []int64) (err error) {
	defer observe("update", "post_tags", time.Now(), &err)

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists bool
	if err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE id = ?)`, postID).Scan(&exists); err != nil {
		return fmt.Errorf("look up post %d: %w", postID, err)
	}
	if !exists {
		return fmt.Errorf("%w: %d", recommend.ErrPostNotFound, postID)
	}

	oldTagIDs, err := postTagIDs(ctx, tx, postID)
	if err != nil {
		return err
	}

	// Only drop mappings that are going away; deleting and re-inserting the
	// same key in one transaction trips DuckDB's unique index.
	where, args := query.NewWhereBuilder().
		AddClause("post_id = ?", postID).
		NotIn("tag_id", tagIDs).
		BuildWithPrefix()
	if _, err = tx.ExecContext(ctx, `DELETE FROM post_tags `+where, args...); err != nil {
		return fmt.Errorf("untag post %d: %w", postID, err)
	}
	for _, tagID := range tagIDs {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO post_tags (post_id, tag_id) VALUES (?, ?)
			ON CONFLICT (post_id, tag_id) DO NOTHING`, postID, tagID); err != nil {
			return fmt.Errorf("tag post %d with %d: %w", postID, tagID, err)
		}
	}

	if err = deleteOrphanTags(ctx, tx, oldTagIDs); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func postTagIDs(ctx context.Context, tx *sql.Tx, postID int64) ([]int64, error) {
	rows, err := tx.QueryContext(ctx, `SELECT tag_id FROM post_tags WHERE post_id = ? ORDER BY tag_id`, postID)
	if err != nil {
		return nil, fmt.Errorf("tags of post %d: %w", postID, err)
	}
	defer closeWithLog(rows, "rows")

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tag id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// deleteOrphanTags removes the tags among candidates that no post maps to,
// along with their persisted vectors.
func deleteOrphanTags(ctx context.Context, tx *sql.Tx, candidates []int64) error {
	if len(candidates) == 0 {
		return nil
	}
	for _, target := range []struct{ table, column string }{
		{"tag_vectors", "tag_id"},
		{"tags", "id"},
	} {
		where, args := query.NewWhereBuilder().
			In(target.column, candidates).
			AddClause(target.column + " NOT IN (SELECT tag_id FROM post_tags)").
			BuildWithPrefix()
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+target.table+" "+where, args...); err != nil {
			return fmt.Errorf("delete unused %s: %w", target.table, err)
		}
	}
	return nil
}

// CreateTag returns the tag named name, creating it if needed.
func (db *DB) CreateTag(ctx context.Context, name string) (tag recommend.Tag, err error) {
	defer observe("insert", "tags", time.Now(), &err)

	name = strings.TrimSpace(name)
	if name == "" {
		return recommend.Tag{}, errors.New("tag name is empty")
	}

	if _, err = db.conn.ExecContext(ctx,
		`INSERT INTO tags (id, name) VALUES (nextval('tags_id_seq'), ?)
		ON CONFLICT (name) DO NOTHING`, name); err != nil {
		return recommend.Tag{}, fmt.Errorf("create tag %q: %w", name, err)
	}

	tag.Name = name
	if err = db.conn.QueryRowContext(ctx,
		`SELECT id FROM tags WHERE name = ?`, name).Scan(&tag.ID); err != nil {
		return recommend.Tag{}, fmt.Errorf("look up tag %q: %w", name, err)
	}
	return tag, nil
}

// EnsureTags returns the tags for names in order, creating missing ones.
// Duplicate names yield one tag.
func (db *DB) EnsureTags(ctx context.Context, names []string) ([]recommend.Tag, error) {
	seen := make(map[string]struct{}, len(names))
	tags := make([]recommend.Tag, 0, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		tag, err := db.CreateTag(ctx, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// ListTags returns every tag ordered by id.
func (db *DB) ListTags(ctx context.Context) (tags []recommend.Tag, err error) {
	defer observe("select", "tags", time.Now(), &err)

	tags, err = queryAndScan(ctx, db.conn, `SELECT id, name FROM tags ORDER BY id`, nil,
		func(rows *sql.Rows) (recommend.Tag, error) {
			var t recommend.Tag
			err := rows.Scan(&t.ID, &t.Name)
			return t, err
		})
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	if tags == nil {
		tags = []recommend.Tag{}
	}
	return tags, nil
}

// TagPost attaches tags to a post. Existing mappings are kept.
func (db *DB) TagPost(ctx context.Context, postID int64, tagIDs ...int64) (err error) {
	defer observe("insert", "post_tags", time.Now(), &err)

	for _, tagID := range tagIDs {
		if _, err = db.conn.ExecContext(ctx,
			`INSERT INTO post_tags (post_id, tag_id) VALUES (?, ?)
			ON CONFLICT (post_id, tag_id) DO NOTHING`, postID, tagID); err != nil {
			return fmt.Errorf("tag post %d with %d: %w", postID, tagID, err)
		}
	}
	return nil
}

// RecordInteraction stores a member's action on a post. A zero CreatedAt
// means now.
//
//nolint:gocritic // Interaction passed by value for immutability
func (db *DB) RecordInteraction(ctx context.Context, in recommend.Interaction) (err error) {
	defer observe("insert", "interactions", time.Now(), &err)

	if !in.Action.Valid() {
		return fmt.Errorf("unknown action kind %q", in.Action)
	}
	createdAt := in.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	if _, err = db.conn.ExecContext(ctx,
		`INSERT INTO interactions (id, member_id, post_id, action, weight, created_at)
		VALUES (nextval('interactions_id_seq'), ?, ?, ?, ?, ?)`,
		in.MemberID, in.PostID, string(in.Action), in.Weight, createdAt); err != nil {
		return fmt.Errorf("record interaction: %w", err)
	}
	return nil
}

// HasRecentInteraction reports whether the member performed action on the
// post after since.
func (db *DB) HasRecentInteraction(ctx context.Context, memberID, postID int64, action recommend.ActionKind, since time.Time) (found bool, err error) {
	defer observe("select", "interactions", time.Now(), &err)

	err = db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM interactions
			WHERE member_id = ? AND post_id = ? AND action = ? AND created_at > ?
		)`,
		memberID, postID, string(action), since.UTC()).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("look up recent interaction: %w", err)
	}
	return found, nil
}

// requireRow maps "no rows affected" to recommend.ErrPostNotFound.
func requireRow(res sql.Result, postID int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", recommend.ErrPostNotFound, postID)
	}
	return nil
}
