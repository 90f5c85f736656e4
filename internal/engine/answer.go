package engine

import (
	"github.com/myrjola/reelguess/internal/errors"
	"log/slog"
	"strings"
)

// Answer is the host's reply to a question.
type Answer uint8

const (
	Yes Answer = iota + 1
	No
	DontKnow
	ProbablyYes
	ProbablyNo
)

var ErrInvalidAnswer = errors.NewSentinel("invalid answer")

// String returns the short answer code.
func (a Answer) String() string {
	switch a {
	case Yes:
		return "y"
	case No:
		return "n"
	case DontKnow:
		return "?"
	case ProbablyYes:
		return "py"
	case ProbablyNo:
		return "pn"
	}
	return "invalid"
}

// ParseAnswer accepts the short codes y, n, ?, py and pn and their spelled-out aliases, ignoring case.
func ParseAnswer(code string) (Answer, error) {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "y", "yes":
		return Yes, nil
	case "n", "no":
		return No, nil
	case "?", "dont-know", "don't know", "idk", "unknown":
		return DontKnow, nil
	case "py", "probably", "probably-yes":
		return ProbablyYes, nil
	case "pn", "probably-not", "probably-no":
		return ProbablyNo, nil
	}
	return 0, errors.Wrap(ErrInvalidAnswer, "parse answer", slog.String("code", code))
}
