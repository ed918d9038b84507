package videos

import "errors"

var (
	ErrVideoNotFound = errors.New("video not found")
	ErrForbidden     = errors.New("not allowed to modify this video")
	ErrAlreadyLiked  = errors.New("video already liked")
	ErrNotLiked      = errors.New("video not liked")
	ErrInvalidInput  = errors.New("invalid input")
	ErrSlotTaken     = errors.New("storage slot already taken")
	ErrFileNotFound  = errors.New("file not found")
)
