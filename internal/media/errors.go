package media

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindUnreadableMedia Kind = "unreadable_media"
	KindTimeout         Kind = "timeout"
	KindCanceled        Kind = "canceled"
	KindIO              Kind = "io"
	KindStore           Kind = "store"
	KindCache           Kind = "cache"
)

// Code is the user-facing error identifier.
type Code string

const (
	CodeNoVideoFile           Code = "NoVideoFile"
	CodeNoThumbnailFile       Code = "NoThumbnailFile"
	CodeMissingRequiredFields Code = "MissingRequiredFields"
	CodeInvalidFields         Code = "InvalidFields"
	CodeInvalidVideoFormat    Code = "InvalidVideoFormat"
	CodeInvalidImageFormat    Code = "InvalidImageFormat"
	CodeUnexpectedField       Code = "UnexpectedField"
	CodeTooManyFiles          Code = "TooManyFiles"
	CodePayloadTooLarge       Code = "PayloadTooLarge"
	CodeUploadFailed          Code = "UploadFailed"
)

var messages = map[Code]string{
	CodeNoVideoFile:           "No video file provided",
	CodeNoThumbnailFile:       "No thumbnail file provided",
	CodeMissingRequiredFields: "Missing required fields",
	CodeInvalidFields:         "Invalid fields",
	CodeInvalidVideoFormat:    "Invalid video format. Only video files are allowed.",
	CodeInvalidImageFormat:    "Invalid image format. Only JPEG, PNG and WebP images are allowed.",
	CodeUnexpectedField:       "Unexpected field",
	CodeTooManyFiles:          "Too many files",
	CodePayloadTooLarge:       "File too large",
	CodeUploadFailed:          "Video upload failed",
}

// Message returns the client-facing text for a code.
func (c Code) Message() string {
	if m, ok := messages[c]; ok {
		return m
	}
	return string(c)
}

type Error struct {
	Kind   Kind
	Code   Code
	Stage  string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Stage != "" {
		msg = e.Stage + ": " + msg
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Reject builds a client-fault error with no underlying cause.
func Reject(code Code, detail string) *Error {
	return &Error{Kind: KindValidation, Code: code, Detail: detail}
}

// Fail builds a non-validation error. Every such failure surfaces as UploadFailed.
func Fail(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Code: CodeUploadFailed, Detail: fmt.Sprintf(format, args...), Err: err}
}

// AsError finds the pipeline error in err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindIO for unclassified errors.
func KindOf(err error) Kind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return KindIO
}

func IsValidation(err error) bool {
	return err != nil && KindOf(err) == KindValidation
}
