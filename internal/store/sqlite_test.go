package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KUKARAF/ordning/internal/auth"
	"github.com/KUKARAF/ordning/internal/ticket"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func sampleTicket(hash string, processed bool) *ticket.Ticket {
	dep := time.Date(2023, 12, 15, 10, 30, 0, 0, time.UTC)
	return &ticket.Ticket{
		FileName:          "ticket.pdf",
		FilePath:          "file:///tickets/ticket.pdf",
		FileHash:          hash,
		TravelMode:        ticket.ModeTrain,
		DepartureLocation: "Berlin Hbf",
		ArrivalLocation:   "München Hbf",
		DepartureTime:     &dep,
		ProcessedAt:       time.Now().UTC(),
		Processed:         processed,
	}
}

func TestInsertAssignsID(t *testing.T) {
	st := newTestStore(t)

	rec := sampleTicket("hash-1", true)
	require.NoError(t, st.Insert(rec))
	assert.NotZero(t, rec.ID)

	loaded, err := st.Get(rec.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Berlin Hbf", loaded.DepartureLocation)
	require.NotNil(t, loaded.DepartureTime)
	assert.True(t, loaded.DepartureTime.Equal(*rec.DepartureTime))
}

func TestGetMissingReturnsNil(t *testing.T) {
	st := newTestStore(t)

	loaded, err := st.Get(12345)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestGetByFileHash(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.Insert(sampleTicket("hash-1", true)))

	found, err := st.GetByFileHash("hash-1")
	require.NoError(t, err)
	require.NotNil(t, found)

	missing, err := st.GetByFileHash("hash-2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpdateOverwritesFields(t *testing.T) {
	st := newTestStore(t)
	rec := sampleTicket("hash-1", true)
	require.NoError(t, st.Insert(rec))

	rec.ArrivalLocation = "Wien"
	rec.SeatNumber = ""
	require.NoError(t, st.Update(rec))

	loaded, err := st.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wien", loaded.ArrivalLocation)
	assert.Empty(t, loaded.SeatNumber)
}

func TestProcessedPartition(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.Insert(sampleTicket("h1", true)))
	require.NoError(t, st.Insert(sampleTicket("h2", false)))
	require.NoError(t, st.Insert(sampleTicket("", false)))

	processed, err := st.Processed()
	require.NoError(t, err)
	assert.Len(t, processed, 1)

	unprocessed, err := st.Unprocessed()
	require.NoError(t, err)
	assert.Len(t, unprocessed, 2)

	total, err := st.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	nProcessed, err := st.CountProcessed()
	require.NoError(t, err)
	assert.EqualValues(t, 1, nProcessed)

	nUnprocessed, err := st.CountUnprocessed()
	require.NoError(t, err)
	assert.EqualValues(t, 2, nUnprocessed)
}

func TestByTravelMode(t *testing.T) {
	st := newTestStore(t)
	train := sampleTicket("h1", true)
	require.NoError(t, st.Insert(train))
	bus := sampleTicket("h2", true)
	bus.TravelMode = ticket.ModeBus
	require.NoError(t, st.Insert(bus))

	buses, err := st.ByTravelMode(ticket.ModeBus)
	require.NoError(t, err)
	require.Len(t, buses, 1)
	assert.Equal(t, bus.ID, buses[0].ID)
}

func TestByLocationMatchesEitherEndpoint(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.Insert(sampleTicket("h1", true))) // Berlin -> München

	other := sampleTicket("h2", true)
	other.DepartureLocation = "Hamburg"
	other.ArrivalLocation = "Berlin Hbf"
	require.NoError(t, st.Insert(other))

	berlin, err := st.ByLocation("Berlin")
	require.NoError(t, err)
	assert.Len(t, berlin, 2)

	hamburg, err := st.ByLocation("Hamburg")
	require.NoError(t, err)
	assert.Len(t, hamburg, 1)

	none, err := st.ByLocation("Paris")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestByDateRange(t *testing.T) {
	st := newTestStore(t)

	early := sampleTicket("h1", true)
	earlyDep := time.Date(2023, 12, 1, 8, 0, 0, 0, time.UTC)
	early.DepartureTime = &earlyDep
	require.NoError(t, st.Insert(early))

	late := sampleTicket("h2", true)
	lateDep := time.Date(2023, 12, 20, 8, 0, 0, 0, time.UTC)
	late.DepartureTime = &lateDep
	require.NoError(t, st.Insert(late))

	window, err := st.ByDateRange(
		time.Date(2023, 12, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, late.ID, window[0].ID)
}

func TestDeleteUnprocessed(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.Insert(sampleTicket("h1", true)))
	require.NoError(t, st.Insert(sampleTicket("h2", false)))

	require.NoError(t, st.DeleteUnprocessed())

	total, err := st.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestDeleteAll(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.Insert(sampleTicket("h1", true)))
	require.NoError(t, st.Insert(sampleTicket("h2", true)))

	require.NoError(t, st.DeleteAll())
	total, err := st.Count()
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestTokenRoundTrip(t *testing.T) {
	st := newTestStore(t)

	loaded, err := st.LoadToken()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	rec := &auth.TokenRecord{
		UserID:      "u-1",
		AccessToken: "token-a",
		TokenType:   "Bearer",
		ExpiresAt:   time.Now().Add(time.Hour).UTC(),
	}
	require.NoError(t, st.SaveToken(rec))

	// Saving again replaces the previous token.
	require.NoError(t, st.SaveToken(&auth.TokenRecord{
		UserID:      "u-1",
		AccessToken: "token-b",
		TokenType:   "Bearer",
		ExpiresAt:   time.Now().Add(2 * time.Hour).UTC(),
	}))

	loaded, err = st.LoadToken()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "token-b", loaded.AccessToken)

	require.NoError(t, st.ClearTokens())
	loaded, err = st.LoadToken()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
