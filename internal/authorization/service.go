package authorization

import (
	"context"
	"errors"

	userdomain "github.com/pedidofacil/pedidofacil/internal/user/domain"
)

var (
	ErrForbidden     = errors.New("authorization: forbidden")
	ErrInvalidActor  = errors.New("authorization: invalid actor")
	ErrInvalidObject = errors.New("authorization: invalid object")
	ErrInvalidAction = errors.New("authorization: invalid action")
)

// Service answers whether a requester may perform an action on an
// object class. Record-level ownership checks stay with the owning
// domain service.
type Service interface {
	Authorize(ctx context.Context, requester userdomain.Requester, object string, action string) error
}
