package ml

import (
	"fmt"
	"strings"
)

// SchemaError reports input data that is missing columns the encoder needs.
// Value-level problems (bad month, bad timestamp) are absorbed by the
// encoding rules and never produce a SchemaError.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}
