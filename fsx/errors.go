package fsx

import (
	"errors"
	"io/fs"

	"github.com/chipsenkbeil/over-there-sub000/cmn/cos"
)

// mapOSErr turns a stdlib os/io error into the cos.IOError taxonomy
// dispatch folds into an IoErrorReply.
func mapOSErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cos.NewErrNotFound("%v", err)
	case errors.Is(err, fs.ErrPermission):
		return cos.NewErrPermission(err.Error(), "fs")
	default:
		return cos.NewErrInvalidData("%v", err)
	}
}
