package transfer

import (
	"errors"
	"fmt"
)

var (
	ErrNothingToExport    = errors.New("no data to export")
	ErrEmptyImport        = errors.New("file contains no data")
	ErrUnsupportedFormat  = errors.New("unsupported file format")
	ErrPassphraseRequired = errors.New("backup is encrypted; passphrase required")
)

// ImportError names the data row (1-based, header excluded) that aborted an
// import. Nothing from the file is applied when it is returned.
type ImportError struct {
	Row    int
	Number string
	Err    error
}

func (e *ImportError) Error() string {
	if e.Number != "" {
		return fmt.Sprintf("import row %d (%s): %v", e.Row, e.Number, e.Err)
	}
	return fmt.Sprintf("import row %d: %v", e.Row, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }
