// Package track activates track choices by their logical index.
package track

import (
	"errors"
	"fmt"

	"github.com/tip-cli/tip/host"
)

// ErrIndexOutOfRange matches every *IndexOutOfRangeError.
var ErrIndexOutOfRange = errors.New("track index out of range")

// IndexOutOfRangeError reports a configured index the session does not offer.
type IndexOutOfRangeError struct {
	Class     host.Class
	Requested int
	Available int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("%s track %d requested, %d available", e.Class, e.Requested, e.Available)
}

func (e *IndexOutOfRangeError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}

// Select activates the choice at index among the session's choices for class.
// A negative index means the selection is disabled and nothing happens.
func Select(s host.Session, class host.Class, index int) error {
	if index < 0 {
		return nil
	}

	choices, err := s.Choices(class)
	if err != nil {
		return fmt.Errorf("list %s choices: %w", class, err)
	}

	if index >= len(choices) {
		return &IndexOutOfRangeError{Class: class, Requested: index, Available: len(choices)}
	}

	if err := s.SetTrack(class, choices[index]); err != nil {
		return fmt.Errorf("set %s track %s: %w", class, choices[index], err)
	}
	return nil
}
