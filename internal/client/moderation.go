package client

// ModerationStatus is the moderation state of users, dealerships and vehicles.
//
//	EN_ATTENTE -> VALIDE | REJETE
//	VALIDE     -> SUSPENDU
//	SUSPENDU   -> VALIDE
//
// REJETE is final. The backend enforces the transitions; CanTransition is for front ends
// that want to hide actions which would be refused.
type ModerationStatus string

const (
	StatusPending   ModerationStatus = "EN_ATTENTE"
	StatusValid     ModerationStatus = "VALIDE"
	StatusSuspended ModerationStatus = "SUSPENDU"
	StatusRejected  ModerationStatus = "REJETE"
)

var moderationTransitions = map[ModerationStatus][]ModerationStatus{
	StatusPending:   {StatusValid, StatusRejected},
	StatusValid:     {StatusSuspended},
	StatusSuspended: {StatusValid},
}

// CanTransition reports whether the backend accepts moving from s to next
func (s ModerationStatus) CanTransition(next ModerationStatus) bool {
	for _, allowed := range moderationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Label returns the French display label
func (s ModerationStatus) Label() string {
	switch s {
	case StatusPending:
		return "En attente"
	case StatusValid:
		return "Validé"
	case StatusSuspended:
		return "Suspendu"
	case StatusRejected:
		return "Rejeté"
	default:
		return string(s)
	}
}

// Color returns the badge colour used for the status
func (s ModerationStatus) Color() string {
	switch s {
	case StatusPending:
		return "yellow"
	case StatusValid:
		return "green"
	case StatusSuspended:
		return "orange"
	case StatusRejected:
		return "red"
	default:
		return "gray"
	}
}
