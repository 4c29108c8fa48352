// Package common provides the content store and other shared helpers
package common

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
)

// Version of the server
const Version = "0.4.0"

// Info holds host and process information shown at startup
type Info struct {
	Hostname  string
	OS        string
	Version   string
	GoVersion string
	NumCPU    int
	StartTime time.Time
}

// GetInfo collects host and process information
func GetInfo() *Info {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	return &Info{
		Hostname:  hostname,
		OS:        runtime.GOOS + "/" + runtime.GOARCH,
		Version:   Version,
		GoVersion: runtime.Version(),
		NumCPU:    runtime.NumCPU(),
		StartTime: time.Now(),
	}
}

// MarshalZerologObject lets Info be logged with Object("host", info)
func (i *Info) MarshalZerologObject(e *zerolog.Event) {
	e.Str("hostname", i.Hostname).
		Str("os", i.OS).
		Str("version", i.Version).
		Str("go", i.GoVersion).
		Int("cpus", i.NumCPU).
		Time("started", i.StartTime)
}

// Uptime returns how long ago the Info was collected
func (i *Info) Uptime() time.Duration {
	return time.Since(i.StartTime)
}

// String returns a string representation of the Info struct
func (i *Info) String() string {
	return fmt.Sprintf(
		"webserver %s on %s (%s, %s, %d CPUs), up %s",
		i.Version,
		i.Hostname,
		i.OS,
		i.GoVersion,
		i.NumCPU,
		i.Uptime().Round(time.Second),
	)
}
