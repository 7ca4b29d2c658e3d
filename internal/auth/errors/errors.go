package errors

import "errors"

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrOTPExpired     = errors.New("OTP expired or never issued")
	ErrOTPMismatch    = errors.New("OTP does not match")
)
