package action

import (
	"io"
)

// SetFailed writes err as an ::error:: command. The caller is responsible for
// exiting with a non-zero status.
func SetFailed(w io.Writer, err error) {
	if err == nil {
		return
	}
	_, _ = io.WriteString(w, "::error::"+escapeData(err.Error())+"\n")
}
