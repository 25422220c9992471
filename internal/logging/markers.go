package logging

import (
	"strings"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// Marker is a named logging category that can be switched on in config.
type Marker string

const (
	Performance Marker = "PERFORMANCE"
	HTTP        Marker = "HTTP"

	markerField = "marker"
)

var enabled atomic.Pointer[map[Marker]struct{}]

// SetMarkers replaces the set of enabled markers. Names are case-insensitive.
func SetMarkers(names []string) {
	set := make(map[Marker]struct{}, len(names))
	for _, name := range names {
		set[Marker(strings.ToUpper(strings.TrimSpace(name)))] = struct{}{}
	}
	enabled.Store(&set)
}

func Enabled(m Marker) bool {
	set := enabled.Load()
	if set == nil {
		return false
	}
	_, ok := (*set)[m]
	return ok
}

// WithMarker returns an entry tagged with the marker.
func WithMarker(m Marker) *log.Entry {
	return log.WithField(markerField, string(m))
}

// Debugf logs at debug level only when the marker is enabled.
func Debugf(m Marker, format string, args ...interface{}) {
	if Enabled(m) {
		WithMarker(m).Debugf(format, args...)
	}
}
