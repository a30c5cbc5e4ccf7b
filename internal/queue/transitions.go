package queue

import "github.com/noah-isme/pemira/internal/model"

var transitionMap = map[model.Status][]model.Status{
	model.StatusVerified:  {model.StatusCheckedIn},
	model.StatusVoted:     {model.StatusCheckedIn, model.StatusVerified},
	model.StatusRejected:  {model.StatusCheckedIn, model.StatusVerified},
	model.StatusCancelled: {model.StatusCheckedIn, model.StatusVerified},
}

// ValidTransition reports whether an entry in fromStatus may move to
// toStatus. Terminal states have no outgoing edges.
func ValidTransition(toStatus, fromStatus model.Status) bool {
	allowed, ok := transitionMap[toStatus]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == fromStatus {
			return true
		}
	}
	return false
}
