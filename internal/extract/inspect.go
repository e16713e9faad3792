package extract

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Info is structural metadata read by pdfcpu.
type Info struct {
	PageCount int
	Encrypted bool
	// Locked is set when the document cannot be opened without a user password.
	// PageCount is unknown then.
	Locked bool
}

// Inspect validates the document structure and reports page count and encryption.
func Inspect(data []byte) (info Info, err error) {
	defer func() {
		if r := recover(); r != nil {
			info, err = Info{}, fmt.Errorf("pdfcpu panic: %v", r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		if errors.Is(err, pdfcpu.ErrWrongPassword) {
			return Info{Encrypted: true, Locked: true}, nil
		}
		return Info{}, fmt.Errorf("pdfcpu read: %w", err)
	}
	return Info{
		PageCount: ctx.PageCount,
		Encrypted: ctx.Encrypt != nil,
	}, nil
}
