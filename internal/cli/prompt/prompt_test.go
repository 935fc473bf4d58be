package prompt

import (
	"fmt"
	"testing"

	"github.com/manifoldco/promptui"
	"github.com/stretchr/testify/assert"
)

func TestMatchWord(t *testing.T) {
	validate := matchWord("DELETE_ALL_FOLDERS")

	assert.NoError(t, validate("DELETE_ALL_FOLDERS"))
	assert.Error(t, validate("delete_all_folders"))
	assert.Error(t, validate(""))
}

func TestIsAborted(t *testing.T) {
	assert.True(t, IsAborted(ErrAborted))
	assert.True(t, IsAborted(promptui.ErrInterrupt))
	assert.True(t, IsAborted(fmt.Errorf("wrapped: %w", promptui.ErrAbort)))
	assert.False(t, IsAborted(fmt.Errorf("boom")))
}

func TestConfirmDangerWithForce(t *testing.T) {
	ok, err := ConfirmDangerWithForce("Delete everything?", "DELETE", true)
	assert.NoError(t, err)
	assert.True(t, ok)
}
