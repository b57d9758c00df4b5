package settings

import "errors"

var (
	ErrSettingsNotFound = errors.New("global settings not found")
)
