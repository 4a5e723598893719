//go:build !windows

// journald support goes through the local syslog socket rather than a
// native journald client: no third-party journald library exists in the
// reference set, and every journald-capable system also runs syslogd or
// accepts the same datagram socket directly.
package flog

import (
	"io"
	"log/syslog"
)

func newJournaldWriter() (io.Writer, error) {
	return syslog.New(syslog.LOG_INFO|syslog.LOG_DAEMON, "udpobfuscat")
}
