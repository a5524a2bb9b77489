package tapsdk

// IsGameOwned reports whether the current user owns the game. It is false
// when the SDK is not initialized.
func (s *SDK) IsGameOwned() bool {
	if s.ready() != nil {
		return false
	}
	return s.lib.AppsIsOwned()
}

// IsDLCOwned reports whether the current user owns dlcID. It is false when
// the SDK is not initialized or dlcID cannot be passed to C.
func (s *SDK) IsDLCOwned(dlcID string) bool {
	if s.ready() != nil {
		return false
	}
	p, err := cstring("dlc id", dlcID)
	if err != nil {
		return false
	}
	return s.lib.DLCIsOwned(p)
}

// ShowDLCStore opens the TapTap store page for dlcID and reports whether
// the client accepted the request.
func (s *SDK) ShowDLCStore(dlcID string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	p, err := cstring("dlc id", dlcID)
	if err != nil {
		return false, err
	}
	return s.lib.DLCShowStore(p), nil
}
