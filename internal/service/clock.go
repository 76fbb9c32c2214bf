package service

import "time"

// Clock abstracts time so lockout windows and nonce expiry are deterministic
// under test.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func NewSystemClock() *SystemClock { return &SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now().UTC() }
