package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KUKARAF/ordning/internal/pdf"
	"github.com/KUKARAF/ordning/internal/source"
	"github.com/KUKARAF/ordning/internal/store"
	"github.com/KUKARAF/ordning/internal/ticket"
)

func newTestService(t *testing.T) (*Service, store.Store) {
	t.Helper()
	st, err := store.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	p := NewProcessor(source.FileResolver{})
	p.extractText = func(data []byte) string { return string(data) }
	p.extractImages = func([]byte) ([]pdf.PageImages, error) { return nil, nil }
	return NewService(p, st), st
}

func writeTicketFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestIngestStoresNewTicket(t *testing.T) {
	svc, _ := newTestService(t)
	path := writeTicketFile(t, t.TempDir(), "ice.pdf", sampleTicketText)

	rec, err := svc.Ingest(context.Background(), path)
	require.NoError(t, err)
	assert.NotZero(t, rec.ID)
	assert.True(t, rec.Processed)
	assert.Equal(t, ticket.ModeTrain, rec.TravelMode)
}

func TestIngestRejectsDuplicate(t *testing.T) {
	svc, st := newTestService(t)
	dir := t.TempDir()
	path := writeTicketFile(t, dir, "ice.pdf", sampleTicketText)

	_, err := svc.Ingest(context.Background(), path)
	require.NoError(t, err)

	// Same bytes under a different name still collide on the fingerprint.
	other := writeTicketFile(t, dir, "copy.pdf", sampleTicketText)
	_, err = svc.Ingest(context.Background(), other)
	require.ErrorIs(t, err, ErrTicketExists)

	count, err := st.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestIngestFailedReadBypassesDuplicateCheck(t *testing.T) {
	svc, st := newTestService(t)
	missing := filepath.Join(t.TempDir(), "gone.pdf")

	first, err := svc.Ingest(context.Background(), missing)
	require.NoError(t, err)
	assert.False(t, first.Processed)
	assert.Empty(t, first.FileHash)
	assert.NotEmpty(t, first.ErrorMessage)

	// Failed reads have no fingerprint, so a second attempt is stored too.
	second, err := svc.Ingest(context.Background(), missing)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	count, err := st.CountUnprocessed()
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestReprocessUnknownID(t *testing.T) {
	svc, st := newTestService(t)

	_, err := svc.Reprocess(context.Background(), 999)
	require.ErrorIs(t, err, ErrTicketNotFound)

	count, err := st.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestReprocessOverwritesKeepingID(t *testing.T) {
	svc, _ := newTestService(t)
	path := writeTicketFile(t, t.TempDir(), "trip.pdf", "FlixBus\nvon Berlin\nnach Prague")

	rec, err := svc.Ingest(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, ticket.ModeBus, rec.TravelMode)
	assert.Equal(t, "Prague", rec.ArrivalLocation)

	// The underlying document changes; reprocessing must pick that up.
	require.NoError(t, os.WriteFile(path, []byte("Zug\nvon Berlin\nnach Wien"), 0o600))

	updated, err := svc.Reprocess(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, updated.ID)
	assert.Equal(t, ticket.ModeTrain, updated.TravelMode)
	assert.Equal(t, "Wien", updated.ArrivalLocation)

	stored, err := svc.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wien", stored.ArrivalLocation)
}

func TestReprocessMissingFileMarksFailed(t *testing.T) {
	svc, _ := newTestService(t)
	path := writeTicketFile(t, t.TempDir(), "trip.pdf", sampleTicketText)

	rec, err := svc.Ingest(context.Background(), path)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	updated, err := svc.Reprocess(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, updated.ID)
	assert.False(t, updated.Processed)
	assert.NotEmpty(t, updated.ErrorMessage)
}

func TestDelete(t *testing.T) {
	svc, st := newTestService(t)
	path := writeTicketFile(t, t.TempDir(), "trip.pdf", sampleTicketText)

	rec, err := svc.Ingest(context.Background(), path)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(rec.ID))
	count, err := st.Count()
	require.NoError(t, err)
	assert.Zero(t, count)

	require.ErrorIs(t, svc.Delete(rec.ID), ErrTicketNotFound)
}

func TestStatsAndCleanup(t *testing.T) {
	svc, _ := newTestService(t)
	dir := t.TempDir()

	_, err := svc.Ingest(context.Background(), writeTicketFile(t, dir, "a.pdf", sampleTicketText))
	require.NoError(t, err)
	_, err = svc.Ingest(context.Background(), filepath.Join(dir, "missing.pdf"))
	require.NoError(t, err)

	stats, err := svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 2, Processed: 1, Unprocessed: 1}, stats)

	require.NoError(t, svc.CleanupFailed())
	stats, err = svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 1, Processed: 1, Unprocessed: 0}, stats)
}

func TestListOrdering(t *testing.T) {
	svc, _ := newTestService(t)
	dir := t.TempDir()

	first, err := svc.Ingest(context.Background(), writeTicketFile(t, dir, "a.pdf", "Zug nach Wien ticket"))
	require.NoError(t, err)
	second, err := svc.Ingest(context.Background(), writeTicketFile(t, dir, "b.pdf", "Bus nach Prag ticket"))
	require.NoError(t, err)

	all, err := svc.List()
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Most recently processed first.
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)
}
