// Package errors provides custom error types for product-related operations.
package errors

import (
	"errors"

	"github.com/abgdnv/cafekiosk/internal/product/numbering"
)

var ErrInvalidProduct = errors.New("invalid product")
var ErrDuplicateProductNumber = errors.New("product number already exists")

// ErrInvalidProductNumber is returned when the latest stored product number cannot be parsed.
var ErrInvalidProductNumber = numbering.ErrInvalidProductNumber

var ErrTransactionBegin = errors.New("failed to begin transaction")
var ErrTransactionCommit = errors.New("failed to commit transaction")
var ErrTransactionRollback = errors.New("failed to rollback transaction")
