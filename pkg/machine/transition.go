package machine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/intake/internal/validator"
	"github.com/aretw0/intake/pkg/domain"
)

// ErrUnknownState is returned for states that have no rule, including the terminal one.
var ErrUnknownState = errors.New("no transition defined for state")

// Result is the outcome of applying one inbound text to a session.
type Result struct {
	Next    domain.State
	Message domain.MessageKey
	Updates domain.Fields
}

// Changed reports whether the transition moved the session forward.
func (r Result) Changed(from domain.State) bool {
	return r.Next != from || !r.Updates.IsZero()
}

type rule func(text string) Result

var table = map[domain.State]rule{
	domain.StateNew:                  onNew,
	domain.StateAwaitingName:         onName,
	domain.StateAwaitingLastName:     onLastName,
	domain.StateAwaitingHonoree:      onHonoree,
	domain.StateAwaitingRelationship: onRelationship,
	domain.StateAwaitingTShirt:       onTShirt,
}

// Transition computes the next step for a session given the sender's text.
func Transition(s domain.Session, text string) (Result, error) {
	r, ok := table[s.State]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownState, s.State)
	}
	return r(text), nil
}

// States returns the states that accept input.
func States() []domain.State {
	out := make([]domain.State, 0, len(table))
	for _, s := range domain.AllStates() {
		if _, ok := table[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

func stay(state domain.State, msg domain.MessageKey) Result {
	return Result{Next: state, Message: msg}
}

func onNew(string) Result {
	return Result{Next: domain.StateAwaitingName, Message: domain.MessageNew}
}

func onName(text string) Result {
	tokens := strings.Fields(text)
	if len(tokens) >= 2 {
		if !validator.IsValidName(tokens[0]) {
			return stay(domain.StateAwaitingName, domain.MessageInvalidName)
		}
		return Result{
			Next:    domain.StateAwaitingHonoree,
			Message: domain.MessageAwaitingName,
			Updates: domain.Fields{
				FirstName: tokens[0],
				LastName:  strings.Join(tokens[1:], " "),
			},
		}
	}

	if !validator.IsValidName(text) {
		return stay(domain.StateAwaitingName, domain.MessageInvalidName)
	}
	return Result{
		Next:    domain.StateAwaitingLastName,
		Message: domain.MessageAwaitingLastName,
		Updates: domain.Fields{FirstName: text},
	}
}

// onLastName accepts any text.
func onLastName(text string) Result {
	return Result{
		Next:    domain.StateAwaitingHonoree,
		Message: domain.MessageAwaitingName,
		Updates: domain.Fields{LastName: text},
	}
}

func onHonoree(text string) Result {
	if !validator.IsValidName(text) {
		return stay(domain.StateAwaitingHonoree, domain.MessageInvalidName)
	}
	return Result{
		Next:    domain.StateAwaitingRelationship,
		Message: domain.MessageAwaitingHonoree,
		Updates: domain.Fields{HonoreeName: text},
	}
}

func onRelationship(text string) Result {
	if !validator.IsValidName(text) {
		return stay(domain.StateAwaitingRelationship, domain.MessageInvalidName)
	}
	return Result{
		Next:    domain.StateAwaitingTShirt,
		Message: domain.MessageAwaitingRelationship,
		Updates: domain.Fields{Relationship: text},
	}
}

func onTShirt(text string) Result {
	if !validator.IsValidShirtSize(text) {
		return stay(domain.StateAwaitingTShirt, domain.MessageInvalidTShirt)
	}
	return Result{
		Next:    domain.StateCompleted,
		Message: domain.MessageCompleted,
		Updates: domain.Fields{TShirtSize: validator.NormalizeShirtSize(text)},
	}
}
