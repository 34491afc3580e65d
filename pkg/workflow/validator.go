package workflow

import (
	"fmt"
	"strings"

	"github.com/aretw0/switchboard/pkg/domain"
)

// Input is the request of a single turn.
type Input struct {
	SessionID string `json:"session_id"`
	UserInput string `json:"user_input"`
}

// Validate checks the shape of the input before any collaborator is touched.
func Validate(in Input) error {
	if strings.TrimSpace(in.SessionID) == "" {
		return fmt.Errorf("%w: sessionId is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.UserInput) == "" {
		return fmt.Errorf("%w: userInput is required", domain.ErrInvalidInput)
	}
	return nil
}
