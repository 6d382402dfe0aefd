package domain

import "errors"

var ErrEnvironmentNotFound = errors.New("environment not found")

// Environment is one externally hosted account system that can be targeted
// for password recovery. Immutable once loaded; the base URL is unique.
type Environment struct {
	ID      string `json:"id"`
	BaseURL string `json:"base_url"`
}
