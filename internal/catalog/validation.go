package catalog

import (
	"fmt"
	"strings"
)

func validateProduct(p Product) error {
	if strings.TrimSpace(p.Code) == "" {
		return fmt.Errorf("%w: product code is required", ErrValidation)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if p.SellUnitPrice.IsNegative() {
		return fmt.Errorf("%w: sell price must not be negative", ErrValidation)
	}
	return nil
}

func validateSupplier(s Supplier) error {
	if strings.TrimSpace(s.Code) == "" {
		return fmt.Errorf("%w: supplier code is required", ErrValidation)
	}
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: supplier name is required", ErrValidation)
	}
	if s.PaymentTermsDays < 0 {
		return fmt.Errorf("%w: payment terms must not be negative", ErrValidation)
	}
	if s.Rating < 0 || s.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 0 and 5", ErrValidation)
	}
	return nil
}
