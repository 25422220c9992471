package debuginfos

import (
	"bytes"
	"runtime/pprof"

	log "github.com/sirupsen/logrus"
)

// ThreadDump returns the stacks of all goroutines of this process.
func ThreadDump() string {
	var buf bytes.Buffer
	if err := pprof.Lookup("goroutine").WriteTo(&buf, 2); err != nil {
		log.WithError(err).Warn("failed to create thread dump")
	}
	return buf.String()
}

// LogThreadDump writes a thread dump to the debug log and returns it.
func LogThreadDump() string {
	dump := ThreadDump()
	log.Debug(dump)
	return dump
}
