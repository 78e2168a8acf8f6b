package agent

import (
	"fmt"
	"time"

	"github.com/voicelane/frontdesk/calendar"
	"github.com/voicelane/frontdesk/tool"
)

// Deps bundles the collaborators shared by all agent variants.
type Deps struct {
	Facility tool.Facility
	Calendar *calendar.Service
	Clock    func() time.Time
}

// NewDefaultRegistry builds the full fixed agent set for one session.
func NewDefaultRegistry(deps Deps) *Registry {
	return NewRegistry(
		NewGreeter(deps),
		NewIdentification(deps),
		NewLookup(deps),
		NewRegistration(deps),
		NewInformation(deps),
		NewBooking(deps),
	)
}

func commonTools(deps Deps) []tool.Tool {
	return []tool.Tool{
		tool.NewCurrentDateTimeTool(deps.Clock),
		tool.NewClinicInfoTool(deps.Facility),
	}
}

func backToGreeter() tool.Tool {
	return tool.NewTransferTool(KindGreeter.String(),
		"Called when the user asks unrelated questions or requests services outside your job description.")
}

// NewGreeter builds the entry-point agent that answers the call and routes
// the caller's intent.
func NewGreeter(deps Deps) *Agent {
	instructions := fmt.Sprintf(
		"You are the friendly automated scheduling assistant for %s. "+
			"Handle calls about appointments quickly and politely while sounding like a calm human receptionist. "+
			"You can provide clinic information and the current date and time, and you route callers to the right colleague: "+
			"booking for appointments, identification for returning patients, registration for new patients, "+
			"information for treatment and pricing questions. "+
			"Speak in clear, complete sentences with no special characters or symbols. "+
			"Keep a warm, professional tone at a normal pace.",
		deps.Facility.Name)
	tools := append(commonTools(deps),
		tool.NewTransferTool(KindBooking.String(), "Called when the user wants to make or update a booking."),
		tool.NewTransferTool(KindIdentification.String(), "Called when a returning patient should be identified."),
		tool.NewTransferTool(KindRegistration.String(), "Called when a new patient wants to register."),
		tool.NewTransferTool(KindInformation.String(), "Called when the user asks about treatments or pricing."),
	)
	return New(KindGreeter, instructions, tools,
		KindBooking, KindIdentification, KindRegistration, KindInformation)
}

// NewIdentification builds the agent that verifies returning patients.
func NewIdentification(deps Deps) *Agent {
	instructions := fmt.Sprintf(
		"You are the patient identification assistant at %s. "+
			"Ask the caller for their phone number and date of birth, confirm the spelling, then look up their record. "+
			"When the patient is found, offer to continue with booking or their appointment history. "+
			"When no record is found, offer to register them as a new patient. "+
			"Speak in clear, complete sentences with no special characters.",
		deps.Facility.Name)
	tools := append(commonTools(deps),
		tool.NewUpdatePhoneTool(),
		tool.NewUpdateDateOfBirthTool(),
		tool.NewLookupPatientTool(),
		tool.NewTransferTool(KindLookup.String(), "Called when the identified patient wants their record or history."),
		tool.NewTransferTool(KindBooking.String(), "Called when the identified patient wants to book."),
		tool.NewTransferTool(KindRegistration.String(), "Called when no record was found and the caller wants to register."),
		backToGreeter(),
	)
	return New(KindIdentification, instructions, tools,
		KindLookup, KindBooking, KindRegistration, KindGreeter)
}

// NewLookup builds the agent that answers questions from the patient record.
func NewLookup(deps Deps) *Agent {
	instructions := fmt.Sprintf(
		"You are the records assistant at %s. "+
			"The patient has already been identified. Answer questions about their past and upcoming appointments. "+
			"Do not reveal records for anyone else. "+
			"Speak in clear, complete sentences with no special characters.",
		deps.Facility.Name)
	tools := append(commonTools(deps),
		tool.NewAppointmentHistoryTool(),
		tool.NewTransferTool(KindBooking.String(), "Called when the patient wants to book a new appointment."),
		backToGreeter(),
	)
	return New(KindLookup, instructions, tools, KindBooking, KindGreeter)
}

// NewRegistration builds the agent that creates new patient records.
func NewRegistration(deps Deps) *Agent {
	instructions := fmt.Sprintf(
		"You are the registration assistant at %s. "+
			"Collect the caller's full name, phone number, date of birth and optionally an email address, "+
			"confirming the spelling of each, then register them as a new patient. "+
			"Afterwards offer to book their first appointment. "+
			"Speak in clear, complete sentences with no special characters.",
		deps.Facility.Name)
	tools := append(commonTools(deps),
		tool.NewUpdateNameTool(),
		tool.NewUpdatePhoneTool(),
		tool.NewUpdateDateOfBirthTool(),
		tool.NewUpdateEmailTool(),
		tool.NewRegisterPatientTool(),
		tool.NewTransferTool(KindBooking.String(), "Called when the newly registered patient wants to book."),
		backToGreeter(),
	)
	return New(KindRegistration, instructions, tools, KindBooking, KindGreeter)
}

// NewInformation builds the agent that answers treatment and pricing
// questions from the catalog.
func NewInformation(deps Deps) *Agent {
	instructions := fmt.Sprintf(
		"You are the treatment information assistant at %s. "+
			"Answer questions about the treatments we offer, their price ranges and how long they take, "+
			"using the treatment catalog tools. Quote prices as ranges, never exact amounts. "+
			"Speak in clear, complete sentences with no special characters.",
		deps.Facility.Name)
	tools := append(commonTools(deps),
		tool.NewTreatmentInfoTool(),
		tool.NewTreatmentPricingTool(),
		tool.NewSearchTreatmentsTool(),
		tool.NewTransferTool(KindBooking.String(), "Called when the user decides to book a treatment."),
		backToGreeter(),
	)
	return New(KindInformation, instructions, tools, KindBooking, KindGreeter)
}

// NewBooking builds the agent that collects appointment details and confirms
// reservations.
func NewBooking(deps Deps) *Agent {
	instructions := fmt.Sprintf(
		"You are a booking agent at %s. Our hours are %s. "+
			"Your jobs are to ask for the booking date and time within our operating hours, then the customer's name, "+
			"phone number and the reason for the booking. Then confirm the reservation details with the customer. "+
			"Always check that requested appointment times fall within our operating hours. "+
			"Speak in clear, complete sentences with no special characters.",
		deps.Facility.Name, deps.Facility.Hours)
	tools := append(commonTools(deps),
		tool.NewUpdateNameTool(),
		tool.NewUpdatePhoneTool(),
		tool.NewUpdateBookingDateTimeTool(),
		tool.NewUpdateBookingReasonTool(),
		tool.NewCheckAvailabilityTool(deps.Calendar),
		tool.NewConfirmReservationTool(KindGreeter.String()),
		backToGreeter(),
	)
	return New(KindBooking, instructions, tools, KindGreeter)
}
