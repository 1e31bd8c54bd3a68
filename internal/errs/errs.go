package errs

import (
	"errors"
	"fmt"
)

// Доменные сентинель-ошибки для маппинга в HTTP коды в handlers.
var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrSettingsNotFound    = errors.New("settings not found")
	ErrSettingsUnavailable = errors.New("settings store unavailable")
	ErrRoomClosed          = errors.New("room closed")
)

// InvalidSettingsError reports which field failed validation. The update is
// rejected atomically; the participant's prior settings stay in force.
type InvalidSettingsError struct {
	Field string
}

func (e *InvalidSettingsError) Error() string {
	return fmt.Sprintf("invalid settings: field %q out of range", e.Field)
}

// AsInvalidSettings unwraps err to an InvalidSettingsError, if it is one.
func AsInvalidSettings(err error) (*InvalidSettingsError, bool) {
	var ie *InvalidSettingsError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
