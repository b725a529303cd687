package command

// Outcome is the result of dispatching a command.
type Outcome int

const (
	// Ignored means the text was not a command.
	Ignored Outcome = iota
	// Success means the handler ran and its response was relayed.
	Success
	// UnknownCategory means the command's category does not exist.
	UnknownCategory
	// UnknownCommand means the category exists but the command does not.
	UnknownCommand
	// ArityMismatch means the command was given the wrong number of
	// arguments.
	ArityMismatch
	// InvalidValue means an argument was not acceptable.
	InvalidValue
	// HandlerFailed means the handler returned an error or panicked.
	HandlerFailed
	// RelayFailed means the response could not be delivered.
	RelayFailed
)

var outcomeNames = [...]string{
	Ignored:         "ignored",
	Success:         "success",
	UnknownCategory: "unknown_category",
	UnknownCommand:  "unknown_command",
	ArityMismatch:   "arity_mismatch",
	InvalidValue:    "invalid_value",
	HandlerFailed:   "handler_failed",
	RelayFailed:     "relay_failed",
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "outcome(?)"
	}
	return outcomeNames[o]
}
