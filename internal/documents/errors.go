package documents

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrExtractionFailed   = errors.New("extraction failed")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrIO                 = errors.New("upload read failed")
)

const (
	ErrorCodeValidation   = "validation_error"
	ErrorCodeNotFound     = "not_found"
	ErrorCodeExtraction   = "extraction_failed"
	ErrorCodePrecondition = "precondition_failed"
	ErrorCodeUploadRead   = "upload_read_failed"
	ErrorCodeTooLarge     = "payload_too_large"
	ErrorCodeInternal     = "internal_error"
)
