package contract

import "github.com/rewrkio/rewrk/sample"

// ResponseValidator inspects a response and decides whether it counts
// as successful. Validate is invoked synchronously on the worker
// slot's task right after a response arrives, so implementations must
// be cheap and non-blocking. A nil return means the response is
// accepted; a non-nil *sample.ValidationError means it is recorded as
// an error and not counted as successful.
type ResponseValidator interface {
	Validate(key RequestKey, head ResponseHead, body []byte) *sample.ValidationError
}

// DefaultValidator accepts any 2xx response and rejects everything
// else with InvalidStatus.
type DefaultValidator struct{}

func (DefaultValidator) Validate(_ RequestKey, head ResponseHead, _ []byte) *sample.ValidationError {
	if head.StatusCode >= 200 && head.StatusCode < 300 {
		return nil
	}
	return sample.NewInvalidStatus(head.StatusCode, head.Header)
}
