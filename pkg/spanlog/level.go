package spanlog

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Level is the severity of a log record.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInformation
	LevelWarning
	LevelError
	LevelCritical
	// LevelNone is never emitted.
	LevelNone
)

var levelNames = [...]string{
	LevelTrace:       "Trace",
	LevelDebug:       "Debug",
	LevelInformation: "Information",
	LevelWarning:     "Warning",
	LevelError:       "Error",
	LevelCritical:    "Critical",
	LevelNone:        "None",
}

// String returns the level name. It is the value of the event field of
// message events.
func (l Level) String() string {
	if l < LevelTrace || l > LevelNone {
		return "Level(" + strconv.Itoa(int(l)) + ")"
	}
	return levelNames[l]
}

// ParseLevel parses a level name case-insensitively. The short aliases
// "info", "warn" and "fatal" are accepted as well.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "information", "info":
		return LevelInformation, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	case "critical", "fatal":
		return LevelCritical, nil
	case "none":
		return LevelNone, nil
	}
	return LevelNone, errors.Wrapf(ErrInvalidLevel, "%q", s)
}

// Filter decides whether records of the given logger name and level are
// considered for emission at all.
type Filter func(name string, level Level) bool

// AcceptAll is the default Filter.
func AcceptAll(string, Level) bool { return true }

// MinLevel returns a Filter accepting levels at or above threshold.
func MinLevel(threshold Level) Filter {
	return func(_ string, level Level) bool {
		return level >= threshold
	}
}
