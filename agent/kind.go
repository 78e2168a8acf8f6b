package agent

// Kind identifies a dialogue agent variant. The set is closed: dispatch and
// display names go through this enum and its static name table, never through
// runtime type introspection.
type Kind int

const (
	// KindGreeter answers the call, routes intents and closes conversations.
	KindGreeter Kind = iota
	// KindIdentification verifies returning callers by phone and date of birth.
	KindIdentification
	// KindLookup answers questions from the patient's record and history.
	KindLookup
	// KindRegistration creates patient records for new callers.
	KindRegistration
	// KindInformation answers treatment and pricing questions.
	KindInformation
	// KindBooking collects appointment details and confirms reservations.
	KindBooking
)

var kindNames = map[Kind]string{
	KindGreeter:        "greeter",
	KindIdentification: "identification",
	KindLookup:         "lookup",
	KindRegistration:   "registration",
	KindInformation:    "information",
	KindBooking:        "booking",
}

// String returns the stable display name used in logs, transcripts and
// transfer records.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Kinds returns all agent variants in declaration order.
func Kinds() []Kind {
	return []Kind{KindGreeter, KindIdentification, KindLookup, KindRegistration, KindInformation, KindBooking}
}
