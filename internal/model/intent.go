package model

import "fmt"

// Intent is the coarse-grained classification of a user turn.
type Intent string

const (
	// IntentLegal covers questions about laws, decrees and circulars.
	IntentLegal Intent = "legal"
	// IntentBusiness covers requests to assemble registration paperwork.
	IntentBusiness Intent = "business"
	// IntentGeneral covers general consulting questions.
	IntentGeneral Intent = "general"
)

// Intents lists all intents in classifier resolution order.
var Intents = []Intent{IntentLegal, IntentBusiness, IntentGeneral}

// ParseIntent converts a string into an Intent. Unknown values are an error.
func ParseIntent(s string) (Intent, error) {
	switch Intent(s) {
	case IntentLegal, IntentBusiness, IntentGeneral:
		return Intent(s), nil
	default:
		return "", fmt.Errorf("unknown intent %q", s)
	}
}

func (i Intent) String() string {
	return string(i)
}
