package ticket

// State is the single lifecycle state of a ticket. It is derived only here,
// from the approval status together with the payment fields.
type State string

const (
	StatePending         State = "pending"
	StateAwaitingPayment State = "awaiting_payment"
	StateSettled         State = "settled"
	StateRejected        State = "rejected"
)

func (t Ticket) State() State {
	switch t.ApprovalStatus {
	case StatusApproved:
		if t.PaymentMode == PaymentDeferred && t.PaymentDate == nil {
			return StateAwaitingPayment
		}
		return StateSettled
	case StatusRejected:
		return StateRejected
	default:
		return StatePending
	}
}

func (s State) Terminal() bool {
	return s == StateSettled || s == StateRejected
}
