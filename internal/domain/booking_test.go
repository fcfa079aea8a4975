package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBookingStatus(t *testing.T) {
	for _, s := range []string{"PENDING", "approved", "Rejected", "cancelled"} {
		status, ok := ParseBookingStatus(s)
		require.True(t, ok, s)
		require.Equal(t, BookingStatus(strings.ToUpper(s)), status)
	}

	_, ok := ParseBookingStatus("DONE")
	require.False(t, ok)
	_, ok = ParseBookingStatus("")
	require.False(t, ok)
}

func TestCanTransitionTo(t *testing.T) {
	require.True(t, BookingPending.CanTransitionTo(BookingApproved))
	require.True(t, BookingPending.CanTransitionTo(BookingRejected))
	require.True(t, BookingPending.CanTransitionTo(BookingCancelled))
	require.False(t, BookingPending.CanTransitionTo(BookingPending))

	// Everything after PENDING is terminal.
	for _, from := range []BookingStatus{BookingApproved, BookingRejected, BookingCancelled} {
		for _, to := range []BookingStatus{BookingPending, BookingApproved, BookingRejected, BookingCancelled} {
			require.False(t, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestCreateBookingRequestValidate(t *testing.T) {
	req := &CreateBookingRequest{EventID: 1, Notes: "  window seats please  "}
	req.Normalize()
	require.NoError(t, req.Validate())
	require.Equal(t, "window seats please", req.Notes)

	require.Error(t, (&CreateBookingRequest{}).Validate())
	require.Error(t, (&CreateBookingRequest{EventID: 1, Notes: strings.Repeat("x", 501)}).Validate())
}
