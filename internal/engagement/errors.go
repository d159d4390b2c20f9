package engagement

import "errors"

var (
	// ErrValidation is returned before any repository call when a command is malformed.
	ErrValidation = errors.New("validation failed")
	// ErrJobNotActive is returned when the target posting is missing, completed or cancelled.
	ErrJobNotActive = errors.New("job is not open for engagement")
	// ErrAlreadyEngaged is returned when the finder already applied to or negotiated on the posting.
	ErrAlreadyEngaged = errors.New("already engaged on this job")
	// ErrPersistence wraps repository failures.
	ErrPersistence = errors.New("persistence failure")
	// ErrRefreshFailed means the write succeeded but re-reading the finder's engagements did not.
	ErrRefreshFailed = errors.New("refresh after write failed")
)
