package scanning

import "errors"

var (
	// ErrImageLoad is returned when the input bitmap cannot be decoded.
	// Fatal for the call; retrying with the same bytes will not help.
	ErrImageLoad = errors.New("receipt image could not be decoded")

	// ErrEngineInit is returned when the recognition engine cannot be
	// started. Fatal for the call, retryable by the caller.
	ErrEngineInit = errors.New("recognition engine failed to initialize")

	// ErrRecognition is returned when the engine fails during recognition.
	// Fatal for the call, retryable by the caller.
	ErrRecognition = errors.New("recognition failed")
)
