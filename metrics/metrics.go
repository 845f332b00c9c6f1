package metrics

import "time"

// Event and operation names recorded by tokensmith.
const (
	EventGenerateRequest = "generate_request"
	EventGenerateFailure = "generate_failure"
	EventPricesRequest   = "prices_request"
	EventPaymentVerified = "payment_verified"
	EventPaymentRejected = "payment_rejected"
	EventTransferSent    = "transfer_sent"
	EventSubmission      = "submission"
	OpModelGenerate      = "model_generate"
	OpVerifyPayment      = "verify_payment"
	OpTransferConfirm    = "transfer_confirm"
	OpSubmission         = "submission"
)

// Recorder records counters and latencies. Recognised label keys are
// "network" and "code"; others are ignored.
type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}

// NoopRecorder drops everything.
type NoopRecorder struct{}

var (
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)

func (NoopRecorder) IncCounter(string, map[string]string)                    {}
func (NoopRecorder) ObserveLatency(string, time.Duration, map[string]string) {}
