package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/vidstream/vidstream/internal/models"
)

func TestStoreErrTaxonomy(t *testing.T) {
	if err := storeErr(context.DeadlineExceeded); !errors.Is(err, models.ErrUnavailable) {
		t.Errorf("deadline exceeded: got %v, want ErrUnavailable", err)
	}
	if err := storeErr(context.Canceled); !errors.Is(err, models.ErrUnavailable) {
		t.Errorf("cancelled: got %v, want ErrUnavailable", err)
	}

	other := fmt.Errorf("connection refused")
	if err := storeErr(other); !errors.Is(err, other) || errors.Is(err, models.ErrUnavailable) {
		t.Errorf("other error: got %v, want pass-through", err)
	}
}
