package tool

import (
	"errors"
	"fmt"

	"github.com/voicelane/frontdesk/core"
)

// NewLookupPatientTool searches for an existing patient by phone number and
// date of birth. An empty result is a valid outcome surfaced as a
// conversational fallback, not an error.
func NewLookupPatientTool() Tool {
	return NewFunctionTool(
		"lookup_patient",
		"Look up an existing patient record by phone number and date of birth.",
		objectSchema(map[string]any{
			"phone":         stringParam("The patient's phone number"),
			"date_of_birth": stringParam("The patient's date of birth, YYYY-MM-DD"),
		}, "phone", "date_of_birth"),
		func(tc *Context, args map[string]any) (any, error) {
			phone, err := stringArg(args, "phone")
			if err != nil {
				return nil, err
			}
			dob, err := stringArg(args, "date_of_birth")
			if err != nil {
				return nil, err
			}
			if tc.Store() == nil {
				return "Patient records are not available right now.", nil
			}
			patient, err := tc.Store().FindPatient(tc.Context(), phone, dob)
			if errors.Is(err, core.ErrNotFound) {
				return "I could not find a patient record with that phone number and date of birth.", nil
			}
			if err != nil {
				return nil, err
			}
			tc.State().SetPatientID(patient.ID)
			tc.RecordFunctionCall(fmt.Sprintf("Patient identified: %s", patient.ID), map[string]any{"function": "lookup_patient"})
			return fmt.Sprintf("Found patient record for %s.", patient.Name), nil
		},
	)
}

// NewRegisterPatientTool creates a new patient record from collected state
// and links it to the session.
func NewRegisterPatientTool() Tool {
	return NewFunctionTool(
		"register_patient",
		"Register a new patient using the name, phone and date of birth already collected.",
		objectSchema(map[string]any{
			"emergency_contact": stringParam("Optional emergency contact"),
		}),
		func(tc *Context, args map[string]any) (any, error) {
			st := tc.State()
			if st.CustomerName() == "" || st.CustomerPhone() == "" || st.DateOfBirth() == "" {
				return "Please provide your name, phone number and date of birth first.", nil
			}
			if tc.Store() == nil {
				return "Patient registration is not available right now.", nil
			}
			id, err := tc.Store().CreatePatient(tc.Context(),
				st.CustomerName(), st.CustomerPhone(), st.DateOfBirth(), st.Email(),
				optionalStringArg(args, "emergency_contact"))
			if err != nil {
				return nil, err
			}
			st.SetPatientID(id)
			tc.RecordFunctionCall(fmt.Sprintf("Patient registered: %s", id), map[string]any{"function": "register_patient"})
			return fmt.Sprintf("Thank you %s, your patient record has been created.", st.CustomerName()), nil
		},
	)
}

// NewAppointmentHistoryTool lists the identified patient's recent
// appointments.
func NewAppointmentHistoryTool() Tool {
	return NewFunctionTool(
		"appointment_history",
		"List the identified patient's recent appointments.",
		objectSchema(map[string]any{}),
		func(tc *Context, args map[string]any) (any, error) {
			st := tc.State()
			if st.PatientID() == "" {
				return "Please identify the patient first using their phone number and date of birth.", nil
			}
			if tc.Store() == nil {
				return "Appointment history is not available right now.", nil
			}
			history, err := tc.Store().AppointmentHistory(tc.Context(), st.PatientID(), 10)
			if err != nil {
				return nil, err
			}
			if len(history) == 0 {
				return "There are no past appointments on record.", nil
			}
			out := make([]map[string]any, 0, len(history))
			for _, a := range history {
				out = append(out, map[string]any{
					"date":      a.Date,
					"time":      a.Time,
					"treatment": a.TreatmentType,
					"status":    a.Status,
				})
			}
			return out, nil
		},
	)
}
