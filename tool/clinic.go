package tool

import (
	"fmt"
	"time"

	"github.com/voicelane/frontdesk/calendar"
)

// Facility holds the static facility facts injected into agent context and
// surfaced by the clinic info tool.
type Facility struct {
	Name    string
	Address string
	Hours   string
}

// Describe renders the facility facts as one spoken-style sentence.
func (f Facility) Describe() string {
	return fmt.Sprintf("%s is located at %s. Our opening hours are %s.", f.Name, f.Address, f.Hours)
}

// NewUpdateNameTool records the caller's name in structured state.
func NewUpdateNameTool() Tool {
	return NewFunctionTool(
		"update_name",
		"Called when the user provides their name. Confirm the spelling with the user before calling.",
		objectSchema(map[string]any{"name": stringParam("The customer's name")}, "name"),
		func(tc *Context, args map[string]any) (any, error) {
			name, err := stringArg(args, "name")
			if err != nil {
				return nil, err
			}
			tc.State().SetCustomerName(name)
			tc.RecordFunctionCall(fmt.Sprintf("Updated name: %s", name), map[string]any{"function": "update_name"})
			return fmt.Sprintf("The name is updated to %s", name), nil
		},
	)
}

// NewUpdatePhoneTool records the caller's phone number in structured state.
func NewUpdatePhoneTool() Tool {
	return NewFunctionTool(
		"update_phone",
		"Called when the user provides their phone number. Confirm the spelling with the user before calling.",
		objectSchema(map[string]any{"phone": stringParam("The customer's phone number")}, "phone"),
		func(tc *Context, args map[string]any) (any, error) {
			phone, err := stringArg(args, "phone")
			if err != nil {
				return nil, err
			}
			tc.State().SetCustomerPhone(phone)
			tc.RecordFunctionCall(fmt.Sprintf("Updated phone: %s", phone), map[string]any{"function": "update_phone"})
			return fmt.Sprintf("The phone number is updated to %s", phone), nil
		},
	)
}

// NewUpdateBookingDateTimeTool records the requested appointment slot.
func NewUpdateBookingDateTimeTool() Tool {
	return NewFunctionTool(
		"update_booking_date_time",
		"Called when the user provides their booking date and time. Confirm with the user before calling.",
		objectSchema(map[string]any{"date_time": stringParam("The booking date and time")}, "date_time"),
		func(tc *Context, args map[string]any) (any, error) {
			dt, err := stringArg(args, "date_time")
			if err != nil {
				return nil, err
			}
			tc.State().SetBookingDateTime(dt)
			tc.RecordFunctionCall(fmt.Sprintf("Updated booking: %s", dt), map[string]any{"function": "update_booking_date_time"})
			return fmt.Sprintf("The booking date and time is updated to %s", dt), nil
		},
	)
}

// NewUpdateBookingReasonTool records the reason for the visit.
func NewUpdateBookingReasonTool() Tool {
	return NewFunctionTool(
		"update_booking_reason",
		"Called when the user provides the reason for their booking.",
		objectSchema(map[string]any{"reason": stringParam("The booking reason")}, "reason"),
		func(tc *Context, args map[string]any) (any, error) {
			reason, err := stringArg(args, "reason")
			if err != nil {
				return nil, err
			}
			tc.State().SetBookingReason(reason)
			tc.RecordFunctionCall(fmt.Sprintf("Updated reason: %s", reason), map[string]any{"function": "update_booking_reason"})
			return fmt.Sprintf("The booking reason is updated to %s", reason), nil
		},
	)
}

// NewUpdateDateOfBirthTool records the caller's date of birth, used for
// patient identification.
func NewUpdateDateOfBirthTool() Tool {
	return NewFunctionTool(
		"update_date_of_birth",
		"Called when the user provides their date of birth (YYYY-MM-DD).",
		objectSchema(map[string]any{"date_of_birth": stringParam("The customer's date of birth, YYYY-MM-DD")}, "date_of_birth"),
		func(tc *Context, args map[string]any) (any, error) {
			dob, err := stringArg(args, "date_of_birth")
			if err != nil {
				return nil, err
			}
			tc.State().SetDateOfBirth(dob)
			tc.RecordFunctionCall(fmt.Sprintf("Updated date of birth: %s", dob), map[string]any{"function": "update_date_of_birth"})
			return "The date of birth is updated.", nil
		},
	)
}

// NewUpdateEmailTool records the caller's email address.
func NewUpdateEmailTool() Tool {
	return NewFunctionTool(
		"update_email",
		"Called when the user provides their email address. Confirm the spelling before calling.",
		objectSchema(map[string]any{"email": stringParam("The customer's email address")}, "email"),
		func(tc *Context, args map[string]any) (any, error) {
			email, err := stringArg(args, "email")
			if err != nil {
				return nil, err
			}
			tc.State().SetEmail(email)
			tc.RecordFunctionCall(fmt.Sprintf("Updated email: %s", email), map[string]any{"function": "update_email"})
			return fmt.Sprintf("The email is updated to %s", email), nil
		},
	)
}

// NewCurrentDateTimeTool tells the model the current wall-clock time.
func NewCurrentDateTimeTool(clock func() time.Time) Tool {
	if clock == nil {
		clock = time.Now
	}
	return NewFunctionTool(
		"get_current_datetime",
		"Get the current date and time.",
		objectSchema(map[string]any{}),
		func(tc *Context, args map[string]any) (any, error) {
			return fmt.Sprintf("Current date and time: %s", clock().Format("Monday, January 2, 2006 at 3:04 PM")), nil
		},
	)
}

// NewClinicInfoTool surfaces the facility facts.
func NewClinicInfoTool(facility Facility) Tool {
	return NewFunctionTool(
		"get_clinic_info",
		"Get clinic location and opening hours information.",
		objectSchema(map[string]any{}),
		func(tc *Context, args map[string]any) (any, error) {
			return facility.Describe(), nil
		},
	)
}

// NewCheckAvailabilityTool lists open slots for a date via the calendar
// service.
func NewCheckAvailabilityTool(cal *calendar.Service) Tool {
	return NewFunctionTool(
		"check_availability",
		"List available appointment slots for a date (YYYY-MM-DD).",
		objectSchema(map[string]any{"date": stringParam("The date to check, YYYY-MM-DD")}, "date"),
		func(tc *Context, args map[string]any) (any, error) {
			date, err := stringArg(args, "date")
			if err != nil {
				return nil, err
			}
			slots, err := cal.AvailableSlots(date, 30)
			if err != nil {
				return nil, err
			}
			if len(slots) == 0 {
				return "There are no available slots on that date; the clinic may be closed.", nil
			}
			times := make([]string, 0, len(slots))
			for _, s := range slots {
				times = append(times, s.Time)
			}
			return map[string]any{"date": date, "available_times": times}, nil
		},
	)
}
