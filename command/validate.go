package command

import (
	"strconv"
	"strings"
)

// Names of arguments that are coerced before their constraints are checked.
const (
	// ArgTicker is upper-cased.
	ArgTicker = "ticker"
	// ArgRaw is a boolean.
	ArgRaw = "raw"
	// ArgInterval is an int.
	ArgInterval = "interval"
	// ArgStrike is a float64.
	ArgStrike = "strike"
)

// Coercion controls argument coercion.
type Coercion struct {
	// StrictBool parses boolean arguments as true or false, case-insensitive.
	// Otherwise any non-empty token is true, including "false".
	StrictBool bool
}

// Validate checks tokens against a command's required arguments with the
// default coercion rules.
func Validate(spec *Spec, tokens []string) (Args, error) {
	return Coercion{}.Validate(spec, tokens)
}

// Validate checks tokens against a command's required arguments and returns
// the coerced arguments. The error, if any, is an *Error with kind
// ArityMismatch or InvalidValue.
//
// Validate does no I/O. The result depends only on the arguments.
func (co Coercion) Validate(spec *Spec, tokens []string) (Args, error) {
	if len(tokens) != len(spec.Required) {
		err := Error{
			Kind:    ArityMismatch,
			Command: spec.Name,
			Usage:   spec.Usage(),
		}
		return nil, &err
	}
	args := make(Args, len(tokens))
	for i, p := range spec.Required {
		tok := tokens[i]
		norm, val, ok := co.coerce(p.Name, tok)
		if !ok || !Satisfies(p.Constraint, norm) {
			err := Error{
				Kind:    InvalidValue,
				Command: spec.Name,
				Arg:     p.Name,
				Value:   tok,
				Usage:   spec.Usage(),
				Hint:    hint(p),
			}
			return nil, &err
		}
		args[p.Name] = val
	}
	return args, nil
}

// coerce converts a token according to the argument name.
// norm is the token as it is checked against the constraint.
func (co Coercion) coerce(name, tok string) (norm string, val any, ok bool) {
	switch name {
	case ArgTicker:
		s := strings.ToUpper(strings.TrimSpace(tok))
		return s, s, true
	case ArgRaw:
		if !co.StrictBool {
			return tok, tok != "", true
		}
		switch strings.ToLower(tok) {
		case "true":
			return tok, true, true
		case "false":
			return tok, false, true
		default:
			return tok, nil, false
		}
	case ArgInterval:
		n, err := strconv.Atoi(tok)
		return tok, n, err == nil
	case ArgStrike:
		f, err := strconv.ParseFloat(tok, 64)
		return tok, f, err == nil
	default:
		return tok, tok, true
	}
}

func hint(p Param) string {
	switch p.Name {
	case ArgTicker:
		return "Give a listed ticker"
	case ArgRaw:
		return "Type true or false"
	default:
		return Describe(p.Constraint)
	}
}
