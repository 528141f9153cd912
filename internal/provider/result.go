// internal/provider/result.go
package provider

// OutcomeStatus tags the result of one adapter attempt so the
// pipeline's branching is exhaustive without inspecting error identity.
type OutcomeStatus int

const (
	// OutcomeOK carries response text
	OutcomeOK OutcomeStatus = iota
	// OutcomeTryNext tells the pipeline to fall through to the next
	// strategy; the reason is logged, never surfaced
	OutcomeTryNext
	// OutcomeFatal carries a classified error for the retry policy
	OutcomeFatal
)

// Outcome is the tagged result of one adapter attempt
type Outcome struct {
	Status OutcomeStatus
	Text   string           // set when Status == OutcomeOK
	Reason string           // set when Status == OutcomeTryNext
	Err    *ClassifiedError // set when Status == OutcomeFatal
}

// Ok wraps response text in a successful outcome
func Ok(text string) Outcome {
	return Outcome{Status: OutcomeOK, Text: text}
}

// TryNext signals the pipeline to fall through to the next strategy
func TryNext(reason string) Outcome {
	return Outcome{Status: OutcomeTryNext, Reason: reason}
}

// Fatal wraps a classified error in a terminal outcome
func Fatal(err *ClassifiedError) Outcome {
	return Outcome{Status: OutcomeFatal, Err: err}
}
