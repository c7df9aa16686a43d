package storage_test

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipeshare/backend/internal/clock"
	"github.com/pageza/recipeshare/backend/internal/storage"
)

// The Firestore store runs against the emulator only:
//
//	gcloud emulators firestore start --host-port=localhost:8681
//	FIRESTORE_EMULATOR_HOST=localhost:8681 go test ./internal/storage/...
func TestFirestoreStore(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	runStoreContract(t, func(t *testing.T, clk clock.Clock) storage.Store {
		// A project per subtest keeps emulator data isolated.
		client, err := firestore.NewClient(context.Background(), "test-"+uuid.NewString()[:8])
		require.NoError(t, err)
		s := storage.NewFirestoreStoreWithClient(client, clk)
		t.Cleanup(func() { s.Close() })
		return s
	})
}
