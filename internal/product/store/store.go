// Package store keeps the product catalog and enforces its rules.
package store

import (
	"context"
	"errors"
	"reflect"
	"strings"

	perrors "github.com/abgdnv/gocatalog/internal/product/errors"
	"github.com/go-playground/validator/v10"
)

// ProductStore is an interface for product storage operations.
type ProductStore interface {
	// Create validates in, assigns the next id and stores the product.
	// Returns *ValidationError for a missing or malformed field and ErrDuplicateCode if the code is taken.
	Create(ctx context.Context, in ProductInput) (*Product, error)

	// FindAll returns every product in insertion order.
	FindAll(ctx context.Context) ([]Product, error)

	// FindByID returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int) (*Product, error)

	// Update merges the fields present in patch into the product; the id never changes.
	// Returns ErrProductNotFound, ErrDuplicateCode or *ValidationError.
	Update(ctx context.Context, id int, patch ProductPatch) (*Product, error)

	// Delete removes the product and reports whether anything was removed.
	Delete(ctx context.Context, id int) (bool, error)
}

// Product represents a product entity in the store.
type Product struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Code        string   `json:"code"`
	Price       float64  `json:"price"`
	Status      bool     `json:"status"`
	Stock       int      `json:"stock"`
	Category    string   `json:"category"`
	Thumbnails  []string `json:"thumbnails"`
}

func productID(p Product) int { return p.ID }

// ProductInput is the payload for creating a product.
// Required fields are checked in declaration order and the first failure is reported.
type ProductInput struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Code        string   `json:"code" validate:"required"`
	Price       Number   `json:"price" validate:"required"`
	Stock       Number   `json:"stock" validate:"required"`
	Category    string   `json:"category" validate:"required"`
	Status      *bool    `json:"status,omitempty"`
	Thumbnails  []string `json:"thumbnails,omitempty"`
}

// ProductPatch is a partial update; nil fields are left untouched.
// There is no id field: an id in the request body is ignored.
type ProductPatch struct {
	Title       *string   `json:"title,omitempty" validate:"omitnil,min=1"`
	Description *string   `json:"description,omitempty" validate:"omitnil,min=1"`
	Code        *string   `json:"code,omitempty" validate:"omitnil,min=1"`
	Price       *Number   `json:"price,omitempty"`
	Status      *bool     `json:"status,omitempty"`
	Stock       *Number   `json:"stock,omitempty"`
	Category    *string   `json:"category,omitempty" validate:"omitnil,min=1"`
	Thumbnails  *[]string `json:"thumbnails,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// A Number that was not provided validates like a missing value.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if n, ok := field.Interface().(Number); ok && n.Provided() {
			return n.String()
		}
		return nil
	}, Number{})
	return v
}

// toProduct validates the input and builds the product it describes, without an id.
func (in ProductInput) toProduct() (Product, error) {
	if err := validate.Struct(in); err != nil {
		return Product{}, firstValidationError(err)
	}
	price, err := in.Price.Float()
	if err != nil {
		return Product{}, &perrors.ValidationError{Field: "price", Reason: "must be a number"}
	}
	stock, err := in.Stock.Int()
	if err != nil {
		return Product{}, &perrors.ValidationError{Field: "stock", Reason: "must be a number"}
	}

	status := true
	if in.Status != nil {
		status = *in.Status
	}
	thumbnails := in.Thumbnails
	if thumbnails == nil {
		thumbnails = []string{}
	}
	return Product{
		Title:       in.Title,
		Description: in.Description,
		Code:        in.Code,
		Price:       price,
		Status:      status,
		Stock:       stock,
		Category:    in.Category,
		Thumbnails:  thumbnails,
	}, nil
}

// applyTo merges the present fields of the patch into p.
func (patch ProductPatch) applyTo(p *Product) error {
	if err := validate.Struct(patch); err != nil {
		return firstValidationError(err)
	}
	var price float64
	var stock int
	var err error
	if patch.Price != nil {
		if price, err = patch.Price.Float(); err != nil {
			return &perrors.ValidationError{Field: "price", Reason: "must be a number"}
		}
	}
	if patch.Stock != nil {
		if stock, err = patch.Stock.Int(); err != nil {
			return &perrors.ValidationError{Field: "stock", Reason: "must be a number"}
		}
	}

	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Code != nil {
		p.Code = *patch.Code
	}
	if patch.Price != nil {
		p.Price = price
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Stock != nil {
		p.Stock = stock
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Thumbnails != nil {
		p.Thumbnails = *patch.Thumbnails
		if p.Thumbnails == nil {
			p.Thumbnails = []string{}
		}
	}
	return nil
}

func firstValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return err
	}
	fieldErr := validationErrors[0]
	reason := "failed on rule: " + fieldErr.Tag()
	switch fieldErr.Tag() {
	case "required":
		reason = "is required"
	case "min":
		reason = "must not be empty"
	}
	return &perrors.ValidationError{Field: fieldErr.Field(), Reason: reason}
}
