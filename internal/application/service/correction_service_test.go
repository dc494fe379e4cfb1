package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/flightworks/aeroops-api/internal/application/service"
	"github.com/flightworks/aeroops-api/internal/domain/entity"
	"github.com/flightworks/aeroops-api/internal/domain/enum"
	"github.com/flightworks/aeroops-api/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// approvedCheckin seeds a member, instructor, hobbs aircraft at 1200.0 and a
// booking, then approves its check-in for a 1200.0 -> 1201.3 flight.
func approvedCheckin(t *testing.T, env *testEnv) (member *entity.User, aircraft *entity.Aircraft, booking *entity.Booking, invoiceID uuid.UUID) {
	t.Helper()

	member = env.seedUser(t)
	instructor := env.seedUser(t)
	aircraft = env.seedAircraft(t, enum.TISMethodHobbs, dec(1200.0))
	booking = env.seedBooking(t, member.ID)

	invoiceID, err := env.checkins.ApproveCheckin(context.Background(), instructor.ID, booking.ID, approveInput(aircraft.ID))
	require.NoError(t, err)
	return member, aircraft, booking, invoiceID
}

func TestCorrectCheckin(t *testing.T) {
	ctx := context.Background()

	t.Run("upward correction applies the difference of deltas", func(t *testing.T) {
		env := newTestEnv(t)
		member, aircraft, booking, invoiceID := approvedCheckin(t, env)
		staff := env.seedUser(t)

		// Stored flight was 1.3h; corrected end makes it 1.8h
		result, err := env.corrections.CorrectCheckin(ctx, staff.ID, booking.ID, &service.CorrectCheckinInput{
			HobbsEnd: decp(1201.8),
			Reason:   "Hobbs end misread at check-in",
		})
		require.NoError(t, err)

		assert.True(t, result.AppliedDelta.Equal(dec(0.5)))
		assert.True(t, result.NewTotalTimeInService.Equal(dec(1201.8)))

		corrected := env.reloadBooking(t, booking.ID)
		require.NotNil(t, corrected.HobbsEnd)
		assert.True(t, corrected.HobbsEnd.Equal(dec(1201.8)))

		updated := env.reloadAircraft(t, aircraft.ID)
		assert.True(t, updated.TotalTimeInService.Equal(dec(1201.8)))

		// Audit entry: zero amount, delta recorded in metadata
		entries := env.ledgerEntriesFor(t, member.ID)
		last := entries[len(entries)-1]
		assert.Equal(t, enum.LedgerEntryAdjustment, last.Type)
		assert.Equal(t, int64(0), last.Amount)
		assert.Contains(t, last.Description, "Hobbs end misread")
		assert.Equal(t, "0.5", last.Metadata["ttis_delta"])
		assert.Equal(t, aircraft.ID.String(), last.Metadata[entity.LedgerMetaAircraftID])
		assert.Equal(t, entity.LedgerEventCheckinCorrected, last.Metadata[entity.LedgerMetaEvent])

		// Billing stays as invoiced
		inv := env.reloadInvoice(t, invoiceID)
		assert.Equal(t, int64(25019), inv.Total)
	})

	t.Run("downward correction yields a negative delta", func(t *testing.T) {
		env := newTestEnv(t)
		_, aircraft, booking, _ := approvedCheckin(t, env)
		staff := env.seedUser(t)

		result, err := env.corrections.CorrectCheckin(ctx, staff.ID, booking.ID, &service.CorrectCheckinInput{
			HobbsEnd: decp(1200.9),
			Reason:   "Transposed digits in the end reading",
		})
		require.NoError(t, err)

		assert.True(t, result.AppliedDelta.Equal(dec(-0.4)))

		updated := env.reloadAircraft(t, aircraft.ID)
		assert.True(t, updated.TotalTimeInService.Equal(dec(1200.9)))
	})

	t.Run("zero difference still leaves an audit trail", func(t *testing.T) {
		env := newTestEnv(t)
		member, aircraft, booking, _ := approvedCheckin(t, env)
		staff := env.seedUser(t)

		result, err := env.corrections.CorrectCheckin(ctx, staff.ID, booking.ID, &service.CorrectCheckinInput{
			HobbsEnd: decp(1201.3),
			Reason:   "Re-confirming the reading after a query",
		})
		require.NoError(t, err)

		assert.True(t, result.AppliedDelta.IsZero())

		updated := env.reloadAircraft(t, aircraft.ID)
		assert.True(t, updated.TotalTimeInService.Equal(dec(1201.3)))

		entries := env.ledgerEntriesFor(t, member.ID)
		last := entries[len(entries)-1]
		assert.Equal(t, enum.LedgerEntryAdjustment, last.Type)
		assert.Equal(t, "0", last.Metadata["ttis_delta"])
	})

	t.Run("rejects an end reading below the start", func(t *testing.T) {
		env := newTestEnv(t)
		_, aircraft, booking, _ := approvedCheckin(t, env)
		staff := env.seedUser(t)

		_, err := env.corrections.CorrectCheckin(ctx, staff.ID, booking.ID, &service.CorrectCheckinInput{
			HobbsEnd: decp(1199.5),
			Reason:   "Attempted bad correction",
		})
		require.Error(t, err)
		assert.Equal(t, 422, apperror.GetAppError(err).Code)

		untouched := env.reloadAircraft(t, aircraft.ID)
		assert.True(t, untouched.TotalTimeInService.Equal(dec(1201.3)))
	})

	t.Run("rejects an unapproved booking", func(t *testing.T) {
		env := newTestEnv(t)
		member := env.seedUser(t)
		staff := env.seedUser(t)
		booking := env.seedBooking(t, member.ID)

		_, err := env.corrections.CorrectCheckin(ctx, staff.ID, booking.ID, &service.CorrectCheckinInput{
			HobbsEnd: decp(1201.0),
			Reason:   "Nothing to correct yet",
		})
		require.Error(t, err)
		assert.True(t, apperror.IsStateConflict(err))
	})

	t.Run("validates input", func(t *testing.T) {
		env := newTestEnv(t)
		_, _, booking, _ := approvedCheckin(t, env)
		staff := env.seedUser(t)

		_, err := env.corrections.CorrectCheckin(ctx, staff.ID, booking.ID, &service.CorrectCheckinInput{
			Reason: "No readings supplied",
		})
		require.Error(t, err)
		assert.Equal(t, 422, apperror.GetAppError(err).Code)

		_, err = env.corrections.CorrectCheckin(ctx, staff.ID, booking.ID, &service.CorrectCheckinInput{
			HobbsEnd: decp(1201.5),
			Reason:   "ok",
		})
		require.Error(t, err)
		assert.Equal(t, 422, apperror.GetAppError(err).Code)
	})

	t.Run("reason length is counted in characters, not bytes", func(t *testing.T) {
		env := newTestEnv(t)
		_, _, booking, _ := approvedCheckin(t, env)
		staff := env.seedUser(t)

		// 400 characters, 1200 bytes
		_, err := env.corrections.CorrectCheckin(ctx, staff.ID, booking.ID, &service.CorrectCheckinInput{
			HobbsEnd: decp(1201.5),
			Reason:   strings.Repeat("表", 400),
		})
		require.NoError(t, err)
	})

	t.Run("unknown booking", func(t *testing.T) {
		env := newTestEnv(t)
		staff := env.seedUser(t)

		_, err := env.corrections.CorrectCheckin(ctx, staff.ID, uuid.New(), &service.CorrectCheckinInput{
			HobbsEnd: decp(1201.5),
			Reason:   "Booking does not exist",
		})
		require.Error(t, err)
		assert.Equal(t, 404, apperror.GetAppError(err).Code)
	})
}
