package entity

import "strings"

type FareCategory string

const (
	FareAllowed     FareCategory = "ALLOWED"
	FareWithPenalty FareCategory = "WITH_PENALTY"
	FareManual      FareCategory = "MANUAL"
)

// ParseFareCategory normalizes a raw model reply. Only an exact match after
// trimming and uppercasing is accepted.
func ParseFareCategory(raw string) (FareCategory, bool) {
	switch c := FareCategory(strings.ToUpper(strings.TrimSpace(raw))); c {
	case FareAllowed, FareWithPenalty, FareManual:
		return c, true
	default:
		return FareManual, false
	}
}

const (
	VarBookingID     = "bookingId"
	VarTicketClass   = "ticketClass"
	VarFareRuleCheck = "fareRuleCheck"
	VarLLMProvider   = "llmProvider"
	VarLLMReasoning  = "llmReasoning"
	VarLLMError      = "llmError"
	VarAPIErrorCount = "apiErrorCount"
)

const (
	DefaultTicketClass     = "Economy"
	DemoBookingPrefix      = "DEMO-"
	demoBookingTaskIDChars = 8
)

// FareContext holds the trip details quoted in the prompt. They are not
// taken from the task.
type FareContext struct {
	PurchaseDate    string
	FlightDate      string
	DaysUntilFlight int
	Airline         string
}

func DefaultFareContext() FareContext {
	return FareContext{
		PurchaseDate:    "2025-01-15",
		FlightDate:      "2025-03-20",
		DaysUntilFlight: 54,
		Airline:         "Standard International Carrier",
	}
}

type FareRequest struct {
	BookingID   string
	TicketClass string
	Context     FareContext
}

func NewFareRequest(task ExternalTask) FareRequest {
	return FareRequest{
		BookingID:   task.Variables.StringOr(VarBookingID, DemoBookingPrefix+task.ShortID(demoBookingTaskIDChars)),
		TicketClass: task.Variables.StringOr(VarTicketClass, DefaultTicketClass),
		Context:     DefaultFareContext(),
	}
}

type ClassificationOutcome struct {
	Category      FareCategory
	Provider      string
	Reasoning     string
	APIErrorCount int
	Error         string
}

func (o ClassificationOutcome) Failed() bool {
	return o.Error != ""
}

type TaskReport struct {
	TaskID  string
	Outcome ClassificationOutcome
}

// Variables renders the completion payload. The failure branch carries only
// the label, the error message and the error count.
func (r TaskReport) Variables() Variables {
	vars := Variables{
		VarFareRuleCheck: StringVariable(string(r.Outcome.Category)),
		VarAPIErrorCount: IntegerVariable(r.Outcome.APIErrorCount),
	}

	if r.Outcome.Failed() {
		vars[VarLLMError] = StringVariable(r.Outcome.Error)
		return vars
	}

	vars[VarLLMProvider] = StringVariable(r.Outcome.Provider)
	vars[VarLLMReasoning] = StringVariable(r.Outcome.Reasoning)
	return vars
}
