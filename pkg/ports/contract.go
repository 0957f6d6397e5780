package ports

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	senderID := "+1555" + time.Now().Format("150405")

	t.Run("Save and Load", func(t *testing.T) {
		sess := domain.NewSession("https://example.com/photo.jpg")
		sess.State = domain.StateAwaitingHonoree
		sess.FirstName = "María"
		sess.LastName = "López"
		sess.LastUpdate = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

		err := store.Save(ctx, senderID, sess)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, senderID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, domain.StateAwaitingHonoree, loaded.State)
		assert.Equal(t, "María", loaded.FirstName)
		assert.Equal(t, "López", loaded.LastName)
		assert.Equal(t, "https://example.com/photo.jpg", loaded.ImageURL)
		assert.True(t, sess.LastUpdate.Equal(loaded.LastUpdate), "LastUpdate should round-trip")
	})

	t.Run("Load Is Isolated From Caller", func(t *testing.T) {
		sess := domain.NewSession("")
		sess.State = domain.StateAwaitingName
		require.NoError(t, store.Save(ctx, senderID, sess))

		sess.State = domain.StateAwaitingTShirt // mutate after save

		loaded, err := store.Load(ctx, senderID)
		require.NoError(t, err)
		assert.Equal(t, domain.StateAwaitingName, loaded.State)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+senderID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, senderID, domain.NewSession("")))

		err := store.Delete(ctx, senderID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, senderID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, senderID), "Deleting a missing session is not an error")
	})

	t.Run("Concurrent Senders", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id := senderID + "-" + string(rune('a'+i))
				sess := domain.NewSession("")
				sess.State = domain.StateAwaitingName
				assert.NoError(t, store.Save(ctx, id, sess))
				loaded, err := store.Load(ctx, id)
				if assert.NoError(t, err) {
					assert.Equal(t, domain.StateAwaitingName, loaded.State)
				}
				assert.NoError(t, store.Delete(ctx, id))
			}(i)
		}
		wg.Wait()
	})
}

// RunRecordSinkContract verifies that a RecordSink accepts concurrent appends.
// read returns every record the sink holds, so the suite can check nothing was lost.
func RunRecordSinkContract(t *testing.T, sink RecordSink, read func(t *testing.T) []domain.Record) {
	ctx := context.Background()
	before := len(read(t))

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := domain.Record{
				ID:         "rec-" + string(rune('A'+i)),
				Phone:      "+15550000000",
				State:      domain.StateCompleted,
				FirstName:  "María",
				TShirtSize: "GRANDE",
				LastUpdate: time.Unix(1745000000, 0),
			}
			assert.NoError(t, sink.Append(ctx, rec))
		}(i)
	}
	wg.Wait()

	records := read(t)
	require.Len(t, records, before+n, "every append must be kept")

	seen := make(map[string]bool)
	for _, r := range records[before:] {
		seen[r.ID] = true
		assert.Equal(t, "+15550000000", r.Phone)
		assert.Equal(t, "GRANDE", r.TShirtSize)
	}
	assert.Len(t, seen, n, "records must not overwrite each other")
}
