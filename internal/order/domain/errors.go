package domain

import "errors"

var (
	ErrNotFound = errors.New("order not found")
	ErrNotOwner = errors.New("order can only be modified by its creator or an admin")
)
