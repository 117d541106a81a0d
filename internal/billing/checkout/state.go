// internal/billing/checkout/state.go
package checkout

import "fmt"

// State is one position in the checkout flow.
type State int

const (
	StateIdle State = iota
	StateSubscriptionCreated
	StatePaymentCreated
	StateRedirectPending
	StatePolling
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubscriptionCreated:
		return "subscription_created"
	case StatePaymentCreated:
		return "payment_created"
	case StateRedirectPending:
		return "redirect_pending"
	case StatePolling:
		return "polling"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Event is one observed step result driving a state transition.
type Event int

const (
	EventSubscribeSucceeded Event = iota
	EventSubscribeFailed
	EventTokenizeFailed
	EventPaymentCreated
	EventPaymentCreateFailed
	EventRedirectRequired
	EventPollStarted
	EventPaymentCompleted
	EventPaymentFailed
	EventPollExhausted
)

func (e Event) String() string {
	switch e {
	case EventSubscribeSucceeded:
		return "subscribe_succeeded"
	case EventSubscribeFailed:
		return "subscribe_failed"
	case EventTokenizeFailed:
		return "tokenize_failed"
	case EventPaymentCreated:
		return "payment_created"
	case EventPaymentCreateFailed:
		return "payment_create_failed"
	case EventRedirectRequired:
		return "redirect_required"
	case EventPollStarted:
		return "poll_started"
	case EventPaymentCompleted:
		return "payment_completed"
	case EventPaymentFailed:
		return "payment_failed"
	case EventPollExhausted:
		return "poll_exhausted"
	}
	return "unknown"
}

// Transition is the pure state function of the checkout flow. It has no
// side effects and rejects transitions the flow can never take.
func Transition(s State, e Event) (State, error) {
	switch s {
	case StateIdle:
		switch e {
		case EventSubscribeSucceeded:
			return StateSubscriptionCreated, nil
		case EventSubscribeFailed:
			return StateFailed, nil
		}
	case StateSubscriptionCreated:
		switch e {
		case EventTokenizeFailed:
			return StateFailed, nil
		case EventPaymentCreated:
			return StatePaymentCreated, nil
		case EventPaymentCreateFailed:
			return StateFailed, nil
		}
	case StatePaymentCreated:
		switch e {
		case EventRedirectRequired:
			return StateRedirectPending, nil
		case EventPaymentCompleted:
			return StateSucceeded, nil
		case EventPaymentFailed:
			return StateFailed, nil
		case EventPollStarted:
			return StatePolling, nil
		}
	case StatePolling:
		switch e {
		case EventPaymentCompleted:
			return StateSucceeded, nil
		case EventPaymentFailed:
			return StateFailed, nil
		case EventPollExhausted:
			return StatePolling, nil
		}
	}
	return s, fmt.Errorf("invalid checkout transition: %s on %s", e, s)
}

// IsTerminal reports whether the flow cannot advance in-process. The
// redirect state counts: resumption happens out-of-band via the callback.
func (s State) IsTerminal() bool {
	switch s {
	case StateRedirectPending, StateSucceeded, StateFailed:
		return true
	}
	return false
}
