// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates sequences, tables and indexes
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

func tableCreationQueries() []string {
	return []string{
		`CREATE SEQUENCE IF NOT EXISTS posts_id_seq START 1`,
		`CREATE SEQUENCE IF NOT EXISTS tags_id_seq START 1`,
		`CREATE SEQUENCE IF NOT EXISTS interactions_id_seq START 1`,

		`CREATE TABLE IF NOT EXISTS posts (
			id BIGINT PRIMARY KEY,
			member_id BIGINT NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			view_count BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS tags (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		)`,

		`CREATE TABLE IF NOT EXISTS post_tags (
			post_id BIGINT NOT NULL,
			tag_id BIGINT NOT NULL,
			PRIMARY KEY (post_id, tag_id)
		)`,

		// action is one of view, like, comment
		`CREATE TABLE IF NOT EXISTS interactions (
			id BIGINT PRIMARY KEY,
			member_id BIGINT NOT NULL,
			post_id BIGINT NOT NULL,
			action TEXT NOT NULL,
			weight DOUBLE NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS tag_vectors (
			tag_id BIGINT PRIMARY KEY,
			tag_name TEXT NOT NULL,
			vector TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_post_tags_tag ON post_tags(tag_id)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_member ON interactions(member_id)`,
	}
}
