package matchmaker

import "errors"

var (
	ErrInvalidKey     = errors.New("invalid queue key")
	ErrAlreadyQueued  = errors.New("already queued")
	ErrNotQueued      = errors.New("not queued")
	ErrAlreadyPresent = errors.New("moderator already present")
	ErrNotPresent     = errors.New("moderator not present")
	ErrEmpty          = errors.New("moderator rotation empty")
	// ErrPairPending 队列里已有两人在等待 ADM，不再接受第三人
	ErrPairPending = errors.New("pair pending moderator")
	ErrInvariant   = errors.New("queue invariant violated")
)
