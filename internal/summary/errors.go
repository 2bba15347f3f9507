package summary

import (
	"errors"
	"fmt"
)

// ErrNoCandidates: the model returned no candidates at all, typically because
// the whole request was blocked.
var ErrNoCandidates = errors.New("model response was blocked or had no candidates")

// ErrEmptyResponse: a normal stop that carried no text.
var ErrEmptyResponse = errors.New("model returned empty response")

// ErrTruncated: the candidate hit the output token budget. Callers apply
// their own policy: question generation degrades, summarization fails.
var ErrTruncated = errors.New("model response truncated by output token budget")

// ErrInputTooLong distinguishes a truncated summary at the public surface:
// a clipped clinical summary is unsafe to present as complete.
var ErrInputTooLong = errors.New("input too long for summarization")

// AbnormalStopError carries the raw completion-status code for any stop other
// than a normal one or a token-budget hit (safety filter, recitation, other).
type AbnormalStopError struct {
	Reason        string
	SafetyRatings []string
	Preview       string
}

func (e *AbnormalStopError) Error() string {
	msg := fmt.Sprintf("generation incomplete, finish reason: %s", e.Reason)
	if len(e.SafetyRatings) > 0 {
		msg += fmt.Sprintf(", safety ratings: %v", e.SafetyRatings)
	}
	if e.Preview != "" {
		msg += fmt.Sprintf(", partial content: %q", e.Preview)
	}
	return msg
}

// ParseError: the model stopped normally but its text was not the JSON we
// asked for. Distinguishable from transport failures so callers can tell
// "model misbehaved" from "model unreachable".
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model response as JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
