package reconciliation

import (
	"context"
	"errors"
	"testing"
)

func TestSyncWithoutFetcher(t *testing.T) {
	svc := NewService(nil, nil)
	if _, err := svc.Sync(context.Background(), "tenant-1"); !errors.Is(err, ErrHRMSNotConfigured) {
		t.Fatalf("expected ErrHRMSNotConfigured, got %v", err)
	}
}
