package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicelane/frontdesk/calendar"
	"github.com/voicelane/frontdesk/core"
	"github.com/voicelane/frontdesk/tool"
)

func testDeps(t *testing.T) Deps {
	t.Helper()

	return Deps{
		Facility: tool.Facility{
			Name:    "SmileRight Dental Clinic",
			Address: "5561 St-Denis Street, Montreal",
			Hours:   "Monday to Friday, 8:00 to 12:00 and 13:00 to 18:00",
		},
		Calendar: calendar.NewService(),
		Clock:    func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) },
	}
}

func TestDefaultRegistryContainsAllVariants(t *testing.T) {
	reg := NewDefaultRegistry(testDeps(t))

	for _, k := range Kinds() {
		a, err := reg.Get(k.String())
		require.NoError(t, err, k.String())
		assert.Equal(t, k, a.Kind())
		assert.NotEmpty(t, a.Instructions())
		assert.NotEmpty(t, a.Tools())
	}
}

func TestRegistryUnknownName(t *testing.T) {
	reg := NewDefaultRegistry(testDeps(t))

	_, err := reg.Get("triage")
	require.Error(t, err)

	var unknown *core.UnknownAgentError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "triage", unknown.Name)
}

func TestRegistryNamesPreserveOrder(t *testing.T) {
	reg := NewDefaultRegistry(testDeps(t))

	assert.Equal(t, []string{
		"greeter", "identification", "lookup", "registration", "information", "booking",
	}, reg.Names())
}

func TestGreeterRoutesToEveryIntent(t *testing.T) {
	greeter := NewGreeter(testDeps(t))

	for _, target := range []string{"booking", "identification", "registration", "information"} {
		assert.NotNil(t, greeter.FindTool("transfer_to_"+target), target)
	}
	assert.Nil(t, greeter.FindTool("transfer_to_greeter"))
}

func TestBookingToolset(t *testing.T) {
	booking := NewBooking(testDeps(t))

	for _, name := range []string{
		"update_name", "update_phone", "update_booking_date_time",
		"update_booking_reason", "check_availability", "confirm_reservation",
		"transfer_to_greeter",
	} {
		assert.NotNil(t, booking.FindTool(name), name)
	}
}

func TestFindToolMissing(t *testing.T) {
	info := NewInformation(testDeps(t))
	assert.Nil(t, info.FindTool("confirm_reservation"))
}

func TestSetContextNilResets(t *testing.T) {
	a := NewLookup(testDeps(t))
	a.Context().AddMessage(core.RoleUser, "hello")
	require.Equal(t, 1, a.Context().Len())

	a.SetContext(nil)
	assert.Equal(t, 0, a.Context().Len())
}

func TestKindStringUnknown(t *testing.T) {
	assert.Equal(t, "unknown", Kind(99).String())
}
