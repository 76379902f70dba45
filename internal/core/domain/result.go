package domain

// ErrorKind classifies a pipeline failure.
type ErrorKind string

const (
	// ErrUpstream covers everything the upstream does wrong: unreachable,
	// bot-blocked, or a structurally broken response.
	ErrUpstream ErrorKind = "upstream"
	// ErrValidation is reserved for payloads that are well-formed in shape
	// but semantically invalid as a whole.
	ErrValidation ErrorKind = "validation"
	// ErrNetwork is reserved for low-level transport faults; the retrieval
	// stage currently folds those into ErrUpstream.
	ErrNetwork ErrorKind = "network"
)

// Error is the typed failure carried by a Result.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// UpstreamError builds an upstream-kind failure.
func UpstreamError(message string) *Error {
	return &Error{Kind: ErrUpstream, Message: message}
}

// Record is the tagged variant produced per raw upstream element: exactly one
// of Location or Failed is set.
type Record struct {
	Location *DiningLocation
	Failed   *FailedLocation
}

// Valid reports whether the record passed schema validation.
func (r Record) Valid() bool {
	return r.Location != nil
}

// ValidRecord wraps a validated location.
func ValidRecord(loc *DiningLocation) Record {
	return Record{Location: loc}
}

// FailedRecord wraps a salvaged stub.
func FailedRecord(stub *FailedLocation) Record {
	return Record{Failed: stub}
}

// Result is the error-as-value outcome of a pipeline stage or of a whole
// ingest call. Callers branch on OK; Err is set iff OK is false.
type Result struct {
	OK   bool
	Data []Record
	Err  *Error
}

// OKResult builds a successful result.
func OKResult(data []Record) Result {
	return Result{OK: true, Data: data}
}

// FailResult builds a failed result.
func FailResult(err *Error) Result {
	return Result{OK: false, Err: err}
}
