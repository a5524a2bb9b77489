package tapsdk

import (
	"go.uber.org/zap"

	"github.com/roach88/tapsdk/sys"
)

// DefaultScopes is what Authorize callers ask for when they have no
// specific requirement.
const DefaultScopes = "public_profile"

// Authorize starts the TapTap authorization flow for a comma-separated
// scope list. The outcome arrives later as an AuthorizeFinished event.
func (s *SDK) Authorize(scopes string) (err error) {
	defer func() { s.observer.Requested("authorize", err) }()

	if err := s.ready(); err != nil {
		return err
	}
	p, err := cstring("scopes", scopes)
	if err != nil {
		return err
	}

	result := s.lib.UserAsyncAuthorize(p)
	s.logger.Debug("authorize", zap.String("scopes", scopes), zap.Stringer("result", result))
	if result != sys.AuthorizeOK {
		return &Error{Code: ErrCodeAuthorizeFailed, AuthorizeResult: result}
	}
	return nil
}

// OpenID returns the current user's open id. ok is false when the SDK is
// not initialized, the user has not authorized, or the id is empty.
func (s *SDK) OpenID() (id string, ok bool) {
	if s.ready() != nil {
		return "", false
	}
	var buf sys.IDBuffer
	if !s.lib.UserGetOpenID(&buf) {
		return "", false
	}
	id = fixedString(buf[:])
	return id, id != ""
}
