// ABOUTME: Capability checks deciding which routes and actions the session may use
// ABOUTME: Pure functions of the current session; advisory only, the server re-checks everything

package authz

import (
	"github.com/Modhak129/WEB-freelance/internal/client"
	"github.com/Modhak129/WEB-freelance/internal/session"
)

// Route names a navigation target
type Route string

// RouteLogin is where denied protected routes redirect
const RouteLogin Route = "login"

// Reason explains a denial. Values are stable so views can map them to text.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonFreelancerOnly  Reason = "freelancer_only"
	ReasonClientOnly      Reason = "client_only"
	ReasonNotOpen         Reason = "not_open"
	ReasonAlreadyBid      Reason = "already_bid"
	ReasonNotOwner        Reason = "not_owner"
	ReasonNotParticipant  Reason = "not_participant"
	ReasonNotCompleted    Reason = "not_completed"
	ReasonNotInProgress   Reason = "not_in_progress"
	ReasonAlreadyReviewed Reason = "already_reviewed"
)

// Message returns the user-facing text for a denial
func (r Reason) Message() string {
	switch r {
	case ReasonNone:
		return ""
	case ReasonUnauthenticated:
		return "Please log in to continue."
	case ReasonFreelancerOnly:
		return "Only freelancers can bid on projects."
	case ReasonClientOnly:
		return "Only clients can post projects."
	case ReasonNotOpen:
		return "This project is no longer accepting bids."
	case ReasonAlreadyBid:
		return "You have already placed a bid on this project."
	case ReasonNotOwner:
		return "Only the owner can do that."
	case ReasonNotParticipant:
		return "Only the client and the hired freelancer can review this project."
	case ReasonNotCompleted:
		return "Reviews open once the project is completed."
	case ReasonNotInProgress:
		return "Only a project in progress can be marked completed."
	case ReasonAlreadyReviewed:
		return "You have already reviewed this project."
	default:
		return string(r)
	}
}

// Decision is the outcome of a capability check
type Decision struct {
	Allowed bool
	Reason  Reason
	// Redirect and ReplaceHistory are set for denied route entries: the caller
	// navigates to Redirect without keeping the blocked page in history.
	Redirect       Route
	ReplaceHistory bool
}

func allow() Decision { return Decision{Allowed: true} }

func deny(r Reason) Decision { return Decision{Reason: r} }

// user returns the signed-in user, or nil unless the session is authenticated.
// Every check starts here so an unknown state is a denial.
func user(s session.Session) *client.User {
	if !s.Authenticated() {
		return nil
	}
	return s.User
}

// EnterProtectedRoute allows entry iff the session is authenticated
func EnterProtectedRoute(s session.Session) Decision {
	if user(s) == nil {
		return Decision{Reason: ReasonUnauthenticated, Redirect: RouteLogin, ReplaceHistory: true}
	}
	return allow()
}

// ShowPostProjectAction allows authenticated clients
func ShowPostProjectAction(s session.Session) Decision {
	u := user(s)
	switch {
	case u == nil:
		return deny(ReasonUnauthenticated)
	case u.IsFreelancer:
		return deny(ReasonClientOnly)
	}
	return allow()
}

// ShowBidForm allows an authenticated freelancer to bid once on an open project
func ShowBidForm(s session.Session, p client.Project) Decision {
	u := user(s)
	switch {
	case u == nil:
		return deny(ReasonUnauthenticated)
	case !u.IsFreelancer:
		return deny(ReasonFreelancerOnly)
	case p.Status != client.StatusOpen:
		return deny(ReasonNotOpen)
	}
	for _, b := range p.Bids {
		if b.Freelancer.ID == u.ID {
			return deny(ReasonAlreadyBid)
		}
	}
	return allow()
}

// ShowAcceptBidAction allows the project's owner while the project is open
func ShowAcceptBidAction(s session.Session, p client.Project) Decision {
	u := user(s)
	switch {
	case u == nil:
		return deny(ReasonUnauthenticated)
	case u.ID != p.Client.ID:
		return deny(ReasonNotOwner)
	case p.Status != client.StatusOpen:
		return deny(ReasonNotOpen)
	}
	return allow()
}

// ShowCompleteAction allows the project's owner to close out a hired project
func ShowCompleteAction(s session.Session, p client.Project) Decision {
	u := user(s)
	switch {
	case u == nil:
		return deny(ReasonUnauthenticated)
	case u.ID != p.Client.ID:
		return deny(ReasonNotOwner)
	case p.Status != client.StatusInProgress:
		return deny(ReasonNotInProgress)
	}
	return allow()
}

// ShowEditProfileAction allows users to edit only their own profile
func ShowEditProfileAction(s session.Session, profileID int) Decision {
	u := user(s)
	switch {
	case u == nil:
		return deny(ReasonUnauthenticated)
	case u.ID != profileID:
		return deny(ReasonNotOwner)
	}
	return allow()
}

// ShowReviewForm allows a participant of a completed project to review it once
func ShowReviewForm(s session.Session, p client.Project) Decision {
	u := user(s)
	if u == nil {
		return deny(ReasonUnauthenticated)
	}
	isClient := u.ID == p.Client.ID
	isFreelancer := p.Freelancer != nil && u.ID == p.Freelancer.ID
	switch {
	case !isClient && !isFreelancer:
		return deny(ReasonNotParticipant)
	case p.Status != client.StatusCompleted:
		return deny(ReasonNotCompleted)
	}
	for _, r := range p.Reviews {
		if r.Reviewer.ID == u.ID {
			return deny(ReasonAlreadyReviewed)
		}
	}
	return allow()
}
