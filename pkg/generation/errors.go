package generation

import "errors"

var (
	ErrEmptyPrompt       = errors.New("prompt is required")
	ErrEmptyConversation = errors.New("at least one message is required")
	ErrEmptyResponse     = errors.New("provider returned an empty response")
	ErrAllProvidersDown  = errors.New("all image providers failed")
	ErrMissingAPIKey     = errors.New("provider API key is required")
	ErrMissingProject    = errors.New("google cloud project is required")
	ErrOperationNotFound = errors.New("video operation not found")
)
