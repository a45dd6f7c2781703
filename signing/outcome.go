package signing

import "fmt"

// Outcome is the result of verifying a document. Every outcome is a valid
// answer; failures to reach one are reported as errors instead.
type Outcome int

const (
	// OutcomeNotSigned means the document carries no complete envelope.
	OutcomeNotSigned Outcome = iota
	// OutcomeValid means the signature verifies and, when a registry is
	// configured, the registry attributes it consistently.
	OutcomeValid
	// OutcomeInvalid means the signature does not verify against the content.
	OutcomeInvalid
	// OutcomeTampered means the signature verifies but the registry disagrees
	// with the document about who signed what.
	OutcomeTampered
	// OutcomeUnregistered means the signature verifies but the registry has no
	// record of it.
	OutcomeUnregistered
)

var outcomeNames = map[Outcome]string{
	OutcomeNotSigned:    "not_signed",
	OutcomeValid:        "valid",
	OutcomeInvalid:      "invalid",
	OutcomeTampered:     "tampered",
	OutcomeUnregistered: "unregistered",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// MarshalText encodes the outcome as its lowercase name.
func (o Outcome) MarshalText() ([]byte, error) {
	if _, ok := outcomeNames[o]; !ok {
		return nil, fmt.Errorf("unknown outcome %d", int(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText decodes an outcome name.
func (o *Outcome) UnmarshalText(text []byte) error {
	for outcome, name := range outcomeNames {
		if name == string(text) {
			*o = outcome
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// State is a step of the verification state machine.
type State int

const (
	StateExtracting State = iota
	StateRehashing
	StateVerifying
	StateAttributing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateExtracting:
		return "extracting"
	case StateRehashing:
		return "rehashing"
	case StateVerifying:
		return "verifying"
	case StateAttributing:
		return "attributing"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}
