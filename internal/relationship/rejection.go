package relationship

import "net/http"

// Reason is a stable machine-readable code for why a transition was refused.
type Reason string

const (
	ReasonSelfTarget        Reason = "self_target"
	ReasonAlreadyPending    Reason = "already_pending"
	ReasonAlreadyResolved   Reason = "already_resolved"
	ReasonNotInitiator      Reason = "not_initiator"
	ReasonNotReceiver       Reason = "not_receiver"
	ReasonBlocked           Reason = "blocked"
	ReasonAlreadyPingedBack Reason = "already_pinged_back"
	ReasonNotFound          Reason = "not_found"
	ReasonUnauthorized      Reason = "unauthorized"
	ReasonInvalidKind       Reason = "invalid_kind"
)

// Rejection is the expected, recoverable outcome of an invalid transition.
// It is returned as a typed value so callers can render a specific message
// without string-matching; store faults are ordinary wrapped errors instead.
type Rejection struct {
	Reason Reason
	Detail string
}

func (r *Rejection) Error() string {
	if r.Detail != "" {
		return string(r.Reason) + ": " + r.Detail
	}
	return string(r.Reason)
}

// Message returns the user-facing text for this rejection.
func (r *Rejection) Message() string {
	if r.Detail != "" {
		return r.Detail
	}
	switch r.Reason {
	case ReasonSelfTarget:
		return "You cannot send a request to yourself"
	case ReasonAlreadyPending:
		return "A request between these users already exists"
	case ReasonAlreadyResolved:
		return "This request has already been responded to"
	case ReasonNotInitiator:
		return "Only the sender of a request can cancel it"
	case ReasonNotReceiver:
		return "Only the receiver of a request can do this"
	case ReasonBlocked:
		return "This user cannot be contacted"
	case ReasonAlreadyPingedBack:
		return "You have already pinged this user back"
	case ReasonNotFound:
		return "The request does not exist"
	case ReasonUnauthorized:
		return "You are not a participant of this request"
	case ReasonInvalidKind:
		return "This action does not apply to this kind of request"
	}
	return "The request could not be processed"
}

// HTTPStatus maps the rejection to the status code the API responds with.
func (r *Rejection) HTTPStatus() int {
	switch r.Reason {
	case ReasonNotFound:
		return http.StatusNotFound
	case ReasonUnauthorized, ReasonNotInitiator, ReasonNotReceiver, ReasonBlocked:
		return http.StatusForbidden
	case ReasonAlreadyPending, ReasonAlreadyResolved, ReasonAlreadyPingedBack:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func reject(reason Reason) *Rejection {
	return &Rejection{Reason: reason}
}

func rejectWith(reason Reason, detail string) *Rejection {
	return &Rejection{Reason: reason, Detail: detail}
}
