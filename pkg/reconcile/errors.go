package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cerebulb/jjm-asset-reconciler/pkg/spreadsheet"
)

var (
	// ErrEmptyInput is returned for an upload with no data rows.
	ErrEmptyInput = errors.New("the uploaded file is empty")

	// ErrUnsupportedFormat is returned for uploads that are not .xlsx.
	ErrUnsupportedFormat = spreadsheet.ErrUnsupportedFormat

	// ErrNoValidationSession is returned when finalize runs before a
	// validation file was uploaded for the session.
	ErrNoValidationSession = errors.New("no validation file for session, run validation first")

	// ErrNoValidatedAssets is returned when finalize finds nothing in the
	// Validated state.
	ErrNoValidatedAssets = errors.New("no validated asset records found")
)

// SchemaError reports the required columns missing from an upload.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid file structure, missing required columns: %s", strings.Join(e.Missing, ", "))
}
