package models

// gigTransitions is the full lifecycle table. A gig is assigned by an accept
// decision, paid on payment confirmation, and closed only while still open.
// Everything absent from this table is illegal.
var gigTransitions = map[GigStatus][]GigStatus{
	GigStatusOpen:     {GigStatusAssigned, GigStatusClosed},
	GigStatusAssigned: {GigStatusPaid},
}

// CanTransition reports whether from -> to is a legal gig status transition.
// Pure function of the two statuses; holds no state.
func CanTransition(from, to GigStatus) bool {
	for _, allowed := range gigTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// PermittedTransitions returns the statuses reachable from the given one.
func PermittedTransitions(from GigStatus) []GigStatus {
	return gigTransitions[from]
}
