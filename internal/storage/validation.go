// Package storage provides the data persistence layer for the mittenpost application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eczema-mitten/mittenpost/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrEmptySlice     = errors.New("slice cannot be empty")
	ErrInvalidOrder   = errors.New("invalid order")
	ErrInvalidRun     = errors.New("invalid export run")
	ErrInvalidProduct = errors.New("invalid product override")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateOrders validates a slice of classified orders.
func validateOrders(orders []model.Order) error {
	if orders == nil {
		return fmt.Errorf("%w: orders", ErrNilParameter)
	}
	if len(orders) == 0 {
		return fmt.Errorf("%w: orders", ErrEmptySlice)
	}

	for i, order := range orders {
		if err := validateOrder(&order); err != nil {
			return fmt.Errorf("order at index %d: %w", i, err)
		}
	}
	return nil
}

// validateOrder validates a single classified order.
func validateOrder(order *model.Order) error {
	if order == nil {
		return fmt.Errorf("%w: order", ErrNilParameter)
	}
	if strings.TrimSpace(order.Row.Name) == "" {
		return fmt.Errorf("%w: missing order name", ErrInvalidOrder)
	}
	if strings.TrimSpace(order.Row.Item.Name) == "" {
		return fmt.Errorf("%w: missing line item name", ErrInvalidOrder)
	}
	if order.Region == "" {
		return fmt.Errorf("%w: missing region", ErrInvalidOrder)
	}
	return nil
}

// validateOverride validates a product override.
func validateOverride(override *model.ProductOverride) error {
	if override == nil {
		return fmt.Errorf("%w: override", ErrNilParameter)
	}
	if strings.TrimSpace(override.LineItemName) == "" {
		return fmt.Errorf("%w: missing line item name", ErrInvalidProduct)
	}
	if override.Product.Material == "" {
		return fmt.Errorf("%w: missing material", ErrInvalidProduct)
	}
	if override.Product.Size == "" {
		return fmt.Errorf("%w: missing size band", ErrInvalidProduct)
	}
	return nil
}

// validateRun validates an export run record.
func validateRun(run *model.ExportRun) error {
	if run == nil {
		return fmt.Errorf("%w: run", ErrNilParameter)
	}
	if run.StartedAt.IsZero() {
		return fmt.Errorf("%w: missing start time", ErrInvalidRun)
	}
	if strings.TrimSpace(run.Source) == "" {
		return fmt.Errorf("%w: missing source", ErrInvalidRun)
	}
	return nil
}
