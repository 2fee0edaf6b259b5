package domain

import "errors"

var (
	ErrInvalidPair    = errors.New("invalid pair")
	ErrInvalidAddress = errors.New("invalid provider address")
)
