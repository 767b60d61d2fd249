package domain

import "errors"

var (
	ErrStreamNotFound        = errors.New("stream not found")
	ErrStreamNotLive         = errors.New("stream not live")
	ErrStreamAlreadyLive     = errors.New("stream already live")
	ErrGuestCapacity         = errors.New("guest capacity exceeded")
	ErrInterventionNotFound  = errors.New("intervention not found")
	ErrInterventionActive    = errors.New("intervention already active")
	ErrInterventionNotActive = errors.New("intervention not active")
	ErrTakeoverNotFound      = errors.New("takeover not found")
	ErrTakeoverActive        = errors.New("takeover already active")
	ErrTakeoverNotActive     = errors.New("takeover not active")
	ErrAuthorityConflict     = errors.New("admin intervention holds stream authority")
	ErrForbidden             = errors.New("forbidden")
	ErrModeratorNotFound     = errors.New("moderator not found")
	ErrMessageNotFound       = errors.New("message not found")
	ErrAlreadyModerated      = errors.New("message already moderated")
	ErrUserNotFound          = errors.New("user not found")
	ErrUpstreamUnavailable   = errors.New("judgment service unavailable")
	ErrInvalidInput          = errors.New("invalid input")
)
