package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/vidstream/vidstream/internal/models"
)

// storeErr translates a backing-store failure into the service taxonomy. A
// timed-out or cancelled call surfaces as ErrUnavailable; everything else
// passes through wrapped.
func storeErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("store call timed out: %w", models.ErrUnavailable)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("store call cancelled: %w", models.ErrUnavailable)
	}
	return err
}
