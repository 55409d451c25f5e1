package ai

import "errors"

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrEmptyResponse indicates the provider returned no usable completion text.
var ErrEmptyResponse = errors.New("empty response from model")
