package wizard

import "errors"

var (
	// ErrStepNotReady means a required field is missing; the forward control
	// stays disabled until it is filled.
	ErrStepNotReady = errors.New("required fields are missing")
	// ErrInvalidTransition is returned for actions not allowed in the current step.
	ErrInvalidTransition = errors.New("action not allowed in current step")
	// ErrBusy is returned while a generate or publish call is outstanding.
	ErrBusy = errors.New("another request is in progress")
	// ErrClosed is returned once the wizard was completed or cancelled.
	ErrClosed = errors.New("wizard is closed")
	// ErrExistingNotSupported signals the "use existing publication" path,
	// which has no flow yet.
	ErrExistingNotSupported = errors.New("using an existing publication is not supported yet")

	ErrOptionNotFound   = errors.New("ad option not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrUnknownField     = errors.New("unknown wizard field")
)

// Collaborator operations
const (
	OpGenerate = "generate"
	OpPublish  = "publish"
)

var fallbackMessages = map[string]string{
	OpGenerate: "failed to generate ad options",
	OpPublish:  "failed to publish ad",
}

// CallError reports a failed collaborator call. Message is what the user sees.
type CallError struct {
	Op      string
	Message string
	Err     error
}

func (e *CallError) Error() string {
	return e.Message
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// UserMessager is implemented by collaborator errors whose text is safe to
// show to the user. Any other failure is reported with the fallback message.
type UserMessager interface {
	UserMessage() string
}

func userMessage(err error) string {
	var um UserMessager
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	return ""
}

func newCallError(op, message string, err error) *CallError {
	if message == "" {
		message = fallbackMessages[op]
	}
	return &CallError{Op: op, Message: message, Err: err}
}
