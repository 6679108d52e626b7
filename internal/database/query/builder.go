// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

// Package query provides SQL query building utilities for the database package.
package query

import (
	"fmt"
	"strings"
)

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
//
// Example usage:
//
//	wb := query.NewWhereBuilder()
//	wb.AddClause("pt.tag_id = ?", tagID)
//	wb.NotIn("p.id", excludeIDs)
//	whereClause, args := wb.Build()
//	// pt.tag_id = ? AND p.id NOT IN (?, ?)
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []interface{}{},
	}
}

// AddClause adds a raw WHERE clause with its arguments.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// In adds "column IN (?, ...)". An empty ids list matches nothing, so it
// adds "1=0" rather than invalid SQL.
func (wb *WhereBuilder) In(column string, ids []int64) *WhereBuilder {
	if len(ids) == 0 {
		return wb.AddClause("1=0")
	}
	return wb.AddClause(fmt.Sprintf("%s IN (%s)", column, wb.placeholders(ids)))
}

// NotIn adds "column NOT IN (?, ...)". An empty ids list is skipped.
func (wb *WhereBuilder) NotIn(column string, ids []int64) *WhereBuilder {
	if len(ids) == 0 {
		return wb
	}
	return wb.AddClause(fmt.Sprintf("%s NOT IN (%s)", column, wb.placeholders(ids)))
}

// placeholders appends ids to the arguments and returns "?, ?, ...".
func (wb *WhereBuilder) placeholders(ids []int64) string {
	p := make([]string, len(ids))
	for i, id := range ids {
		p[i] = "?"
		wb.args = append(wb.args, id)
	}
	return strings.Join(p, ", ")
}

// Build returns the clauses joined with AND (without the WHERE keyword)
// and their arguments. Returns ("1=1", []) if no clauses were added.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", []interface{}{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix returns the WHERE clause with "WHERE " prefix.
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	whereClause, args := wb.Build()
	return "WHERE " + whereClause, args
}

// Count returns the number of clauses added to the builder.
func (wb *WhereBuilder) Count() int {
	return len(wb.clauses)
}

// IsEmpty returns true if no clauses have been added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}
