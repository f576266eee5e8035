package application

import "github.com/shareit/service-booking/pkg/domain"

// pageOffset coerces from to the start of the page containing it, the same way booking lists do.
func pageOffset(from, size int) (int, error) {
	if from < 0 {
		return 0, domain.NewValidationError("from must not be negative")
	}
	if size <= 0 {
		return 0, domain.NewValidationError("size must be positive")
	}
	return (from / size) * size, nil
}
