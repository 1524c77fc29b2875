package auth

import "errors"

var (
	ErrEmailPasswordRequired = errors.New("Email and password are required")
	ErrInvalidEmail          = errors.New("Invalid Email")
	ErrIncorrectPassword     = errors.New("Incorrect Password")
	ErrNotAuthenticated      = errors.New("Not authenticated")
	ErrInitDataRequired      = errors.New("initData is required")
	ErrInvalidInitData       = errors.New("Invalid Telegram init data")
	ErrInitDataExpired       = errors.New("Telegram init data expired")
)
