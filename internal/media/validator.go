package media

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amankumarsingh77/vidhost/internal/models"
	"github.com/amankumarsingh77/vidhost/pkg/utils"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
)

// DefaultMaxPayload is the ceiling for one upload request.
const DefaultMaxPayload int64 = 500 << 20

var allowedVideoMIMEs = map[string]struct{}{
	"video/mp4":       {},
	"video/avi":       {},
	"video/mov":       {},
	"video/wmv":       {},
	"video/flv":       {},
	"video/webm":      {},
	"video/quicktime": {},
	"video/x-msvideo": {},
	"video/x-ms-wmv":  {},
	"video/x-flv":     {},
}

var allowedImageMIMEs = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/webp": {},
}

type Validator struct {
	maxPayload int64
	sniff      bool
}

// NewValidator builds a validator. sniff enables content detection on staged bytes.
func NewValidator(maxPayload int64, sniff bool) *Validator {
	if maxPayload <= 0 {
		maxPayload = DefaultMaxPayload
	}
	return &Validator{maxPayload: maxPayload, sniff: sniff}
}

func (v *Validator) MaxPayload() int64 {
	return v.maxPayload
}

func normalizeMIME(declared string) string {
	mt, _, _ := strings.Cut(declared, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// Validate accepts or rejects a declared MIME type for a field role.
func (v *Validator) Validate(role models.FileRole, declaredMIME string) error {
	mt := normalizeMIME(declaredMIME)
	switch role {
	case models.RoleMedia:
		if _, ok := allowedVideoMIMEs[mt]; !ok {
			return Reject(CodeInvalidVideoFormat, fmt.Sprintf("declared type %q", declaredMIME))
		}
	case models.RolePoster:
		if _, ok := allowedImageMIMEs[mt]; !ok {
			return Reject(CodeInvalidImageFormat, fmt.Sprintf("declared type %q", declaredMIME))
		}
	default:
		return Reject(CodeUnexpectedField, fmt.Sprintf("role %q", role))
	}
	return nil
}

// ValidateFiles checks the file parts of a request before anything is staged.
func (v *Validator) ValidateFiles(files []*models.UploadFile) error {
	seen := make(map[models.FileRole]bool, 2)
	var total int64
	for _, f := range files {
		role, ok := models.RoleForField(f.Field)
		if !ok {
			return Reject(CodeUnexpectedField, fmt.Sprintf("field %q", f.Field))
		}
		if err := v.Validate(role, f.MimeType); err != nil {
			return err
		}
		if seen[role] {
			return Reject(CodeTooManyFiles, fmt.Sprintf("more than one %q file", f.Field))
		}
		seen[role] = true
		if f.Size > v.maxPayload {
			return Reject(CodePayloadTooLarge, fmt.Sprintf("%q is %d bytes", f.Field, f.Size))
		}
		total += f.Size
	}
	if !seen[models.RoleMedia] {
		return Reject(CodeNoVideoFile, "")
	}
	if total > v.maxPayload {
		return Reject(CodePayloadTooLarge, fmt.Sprintf("request carries %d bytes", total))
	}
	return nil
}

// ValidateInput checks the metadata fields of an upload.
func (v *Validator) ValidateInput(ctx context.Context, input *models.UploadInput) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	err := utils.ValidateStruct(ctx, input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Reject(CodeInvalidFields, err.Error())
	}
	fields := make([]string, 0, len(fieldErrs))
	missing := false
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			missing = true
		}
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	if missing {
		return Reject(CodeMissingRequiredFields, strings.Join(fields, ", "))
	}
	return Reject(CodeInvalidFields, strings.Join(fields, ", "))
}

// Inspect re-checks a staged file: the declared type again, then the bytes themselves.
// On success a poster's MimeType holds its canonical type, sniffed when sniffing is on.
func (v *Validator) Inspect(f *models.StagedFile) error {
	if err := v.Validate(f.Role, f.MimeType); err != nil {
		return err
	}
	if f.Role == models.RolePoster {
		f.MimeType = canonicalImageMIME(f.MimeType)
	}
	if !v.sniff {
		return nil
	}
	detected, err := mimetype.DetectFile(f.Path)
	if err != nil {
		return Fail(KindIO, err, "read staged file")
	}
	mt := normalizeMIME(detected.String())
	switch f.Role {
	case models.RoleMedia:
		if !strings.HasPrefix(mt, "video/") {
			return Reject(CodeInvalidVideoFormat, fmt.Sprintf("content is %q", mt))
		}
	case models.RolePoster:
		if _, ok := allowedImageMIMEs[mt]; !ok {
			return Reject(CodeInvalidImageFormat, fmt.Sprintf("content is %q", mt))
		}
		f.MimeType = canonicalImageMIME(mt)
	}
	return nil
}

func canonicalImageMIME(declared string) string {
	mt := normalizeMIME(declared)
	if mt == "image/jpg" {
		return "image/jpeg"
	}
	return mt
}
