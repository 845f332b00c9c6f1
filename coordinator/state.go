package coordinator

// State is a step of a paid generation.
type State string

const (
	StateIdle                 State = "Idle"
	StateValidating           State = "Validating"
	StateNotConnected         State = "NotConnected"
	StateNoPriceData          State = "NoPriceData"
	StatePaying               State = "Paying"
	StateAwaitingConfirmation State = "AwaitingConfirmation"
	StateGenerating           State = "Generating"
	StateSuccess              State = "Success"
	StateGenerationFailed     State = "GenerationFailed"
	StatePaymentFailed        State = "PaymentFailed"
)

// Terminal reports whether s ends a submission.
func (s State) Terminal() bool {
	switch s {
	case StateNotConnected, StateNoPriceData, StateSuccess, StateGenerationFailed, StatePaymentFailed:
		return true
	default:
		return false
	}
}

// Busy reports whether a submission is running in s.
func (s State) Busy() bool {
	switch s {
	case StateValidating, StatePaying, StateAwaitingConfirmation, StateGenerating:
		return true
	default:
		return false
	}
}

func (s State) String() string {
	return string(s)
}

// Transition is passed to observers on every state change.
type Transition struct {
	From State
	To   State
	// TxHash is set once the fee transfer is broadcast.
	TxHash string
}
