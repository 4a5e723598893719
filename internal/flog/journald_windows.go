//go:build windows

package flog

import (
	"fmt"
	"io"
)

func newJournaldWriter() (io.Writer, error) {
	return nil, fmt.Errorf("journald logging backend is not available on windows")
}
