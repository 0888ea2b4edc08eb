package repository

import "errors"

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres). Missing rows are reported as sql.ErrNoRows.

// ErrDuplicate is returned when an insert collides with an existing primary key.
var ErrDuplicate = errors.New("duplicate key")

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}
