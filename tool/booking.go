package tool

import "fmt"

// NewConfirmReservationTool finalizes a booking once all required fields are
// collected, then hands the conversation back to the greeter.
func NewConfirmReservationTool(greeterName string) Tool {
	return NewFunctionTool(
		"confirm_reservation",
		"Called when the user confirms the reservation details.",
		objectSchema(map[string]any{}),
		func(tc *Context, args map[string]any) (any, error) {
			st := tc.State()
			st.Ring().Increment("reservation_attempt")

			if st.CustomerName() == "" || st.CustomerPhone() == "" {
				return "Please provide your name and phone number first.", nil
			}
			if st.BookingDateTime() == "" {
				return "Please provide the reservation time first.", nil
			}

			st.Ring().Increment("reservation_confirmed")
			tc.RecordFunctionCall("Reservation confirmed", map[string]any{"event": "reservation_confirmed"})

			if st.Store() != nil && st.PatientID() != "" {
				date, timeOfDay := splitDateTime(st.BookingDateTime())
				if _, err := st.Store().CreateAppointment(tc.Context(), st.PatientID(), date, timeOfDay, st.BookingReason(), "", ""); err != nil {
					tc.Logger().Error("tool.confirm_reservation.appointment_write_failed", "error", err.Error())
				}
			}

			tc.RequestTransfer(greeterName, "reservation confirmed")
			return fmt.Sprintf("The reservation for %s is confirmed.", st.BookingDateTime()), nil
		},
	)
}

// splitDateTime separates "YYYY-MM-DD HH:MM" into its parts; inputs without a
// time component yield an empty time.
func splitDateTime(v string) (date, timeOfDay string) {
	for i := 0; i < len(v); i++ {
		if v[i] == ' ' {
			return v[:i], v[i+1:]
		}
	}
	return v, ""
}
