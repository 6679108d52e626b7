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

	"github.com/tomtom215/quill/internal/recommend"
)

var _ recommend.TagVectorStore = (*DB)(nil)

// FetchAllTagVectors returns every tag vector record ordered by tag id.
func (db *DB) FetchAllTagVectors(ctx context.Context) (records []recommend.TagVectorRecord, err error) {
	defer observe("select", "tag_vectors", time.Now(), &err)

	records, err = queryAndScan(ctx, db.conn,
		`SELECT tag_id, tag_name, vector FROM tag_vectors ORDER BY tag_id`,
		nil,
		func(rows *sql.Rows) (recommend.TagVectorRecord, error) {
			var rec recommend.TagVectorRecord
			err := rows.Scan(&rec.TagID, &rec.TagName, &rec.Vector)
			return rec, err
		})
	if err != nil {
		return nil, fmt.Errorf("fetch tag vectors: %w", err)
	}
	if records == nil {
		records = []recommend.TagVectorRecord{}
	}
	return records, nil
}

// PersistTagVector stores rec unless a record for its tag already exists.
// Existing records are never overwritten.
//
//nolint:gocritic // record passed by value to satisfy recommend.TagVectorStore
func (db *DB) PersistTagVector(ctx context.Context, rec recommend.TagVectorRecord) (err error) {
	defer observe("insert", "tag_vectors", time.Now(), &err)

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO tag_vectors (tag_id, tag_name, vector, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (tag_id) DO NOTHING`,
		rec.TagID, rec.TagName, rec.Vector, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("persist tag vector %d: %w", rec.TagID, err)
	}
	return nil
}
