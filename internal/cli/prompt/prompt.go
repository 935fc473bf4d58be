// Package prompt asks for confirmation before destructive CLI commands.
package prompt

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user aborts a prompt (Ctrl+C).
var ErrAborted = errors.New("aborted")

// IsAborted returns true if the error indicates the user aborted.
func IsAborted(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) || errors.Is(err, ErrAborted)
}

// matchWord returns a promptui validator accepting only word.
func matchWord(word string) promptui.ValidateFunc {
	return func(input string) error {
		if input != word {
			return fmt.Errorf("type '%s' to confirm", word)
		}
		return nil
	}
}

// ConfirmDanger requires the user to type confirmWord before a destructive
// operation proceeds.
func ConfirmDanger(label, confirmWord string) (bool, error) {
	p := promptui.Prompt{
		Label:    fmt.Sprintf("%s (type '%s' to confirm)", label, confirmWord),
		Validate: matchWord(confirmWord),
	}

	result, err := p.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) {
			return false, ErrAborted
		}
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return result == confirmWord, nil
}

// ConfirmDangerWithForce skips the prompt when force is set.
func ConfirmDangerWithForce(label, confirmWord string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	return ConfirmDanger(label, confirmWord)
}
