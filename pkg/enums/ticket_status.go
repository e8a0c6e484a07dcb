package enums

import "fmt"

// TicketStatus tracks the repair lifecycle shared by customers and jobs.
type TicketStatus string

const (
	TicketStatusNew             TicketStatus = "New"
	TicketStatusDiagnosing      TicketStatus = "Diagnosing"
	TicketStatusInProgress      TicketStatus = "In Progress"
	TicketStatusWaitingForParts TicketStatus = "Waiting for Parts"
	TicketStatusReadyForPickup  TicketStatus = "Ready for Pickup"
	TicketStatusCompleted       TicketStatus = "Completed"
	TicketStatusCancelled       TicketStatus = "Cancelled"
)

var validTicketStatuses = []TicketStatus{
	TicketStatusNew,
	TicketStatusDiagnosing,
	TicketStatusInProgress,
	TicketStatusWaitingForParts,
	TicketStatusReadyForPickup,
	TicketStatusCompleted,
	TicketStatusCancelled,
}

func (s TicketStatus) String() string {
	return string(s)
}

func (s TicketStatus) IsValid() bool {
	for _, candidate := range validTicketStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends the repair lifecycle.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusCompleted || s == TicketStatusCancelled
}

func ParseTicketStatus(value string) (TicketStatus, error) {
	for _, candidate := range validTicketStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid status %q", value)
}
