package notifications

import (
	"fleet/internal/core/domain/model/assignment"
)

// Offer carries what the message builders need to describe an assignment.
type Offer struct {
	LoadNumber  string
	Origin      string
	Destination string
	Reason      string
}

// Message is the content of a mirror.
type Message struct {
	Title string
	Body  string
}

// MessageBuilder renders the mirror content for an assignment state.
type MessageBuilder func(state assignment.State) Message

// DriverMessages describes the offer from the driver's side.
func DriverMessages(o Offer) MessageBuilder {
	return func(state assignment.State) Message {
		route := o.Origin + " to " + o.Destination
		switch state {
		case assignment.Pending:
			return Message{Title: "New load offer " + o.LoadNumber, Body: route}
		case assignment.Accepted:
			return Message{Title: "Load " + o.LoadNumber + " accepted", Body: route}
		case assignment.Rejected:
			return Message{Title: "Load " + o.LoadNumber + " rejected", Body: o.Reason}
		case assignment.Expired:
			return Message{Title: "Offer for load " + o.LoadNumber + " expired", Body: "No response before the deadline"}
		case assignment.Cancelled:
			return Message{Title: "Offer for load " + o.LoadNumber + " withdrawn", Body: route}
		default:
			return Message{Title: "Load " + o.LoadNumber}
		}
	}
}

// DispatcherMessages describes the driver's answer to the dispatcher who made
// the offer, with enough detail to re-offer right away.
func DispatcherMessages(o Offer) MessageBuilder {
	return func(state assignment.State) Message {
		switch state {
		case assignment.Accepted:
			return Message{Title: "Load " + o.LoadNumber + " accepted by driver", Body: o.Origin + " to " + o.Destination}
		case assignment.Rejected:
			title := "Load " + o.LoadNumber + " rejected"
			if o.Reason != "" {
				title += ": " + o.Reason
			}
			return Message{Title: title, Body: "Offer it to another driver"}
		case assignment.Expired:
			return Message{Title: "Load " + o.LoadNumber + " expired: " + assignment.ReasonNoResponse, Body: "Offer it to another driver"}
		case assignment.Cancelled:
			return Message{Title: "Offer for load " + o.LoadNumber + " cancelled"}
		default:
			return Message{Title: "Load " + o.LoadNumber + " offered"}
		}
	}
}
