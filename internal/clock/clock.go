// Package clock resolves bus-monitor timestamp strings to epoch seconds
// and wall-clock HH:MM.
//
// busctl prints timestamps in a locale-shaped human format that date(1)
// already knows how to parse, so resolution shells out to it rather than
// re-deriving the format. Failures degrade to absent time fields and are
// never fatal to the caller.
package clock

import (
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Resolver converts one bus timestamp string. ok is false when the
// string could not be resolved; callers emit their record anyway with
// both time fields absent.
type Resolver interface {
	Resolve(busTimestamp string) (epoch int64, hhmm string, ok bool)
}

// DateCommand resolves timestamps by invoking date(1). Cost is one
// process spawn per resolved notification, bounded by the OS.
type DateCommand struct{}

func (DateCommand) Resolve(busTimestamp string) (int64, string, bool) {
	out, err := exec.Command("date", "-d", busTimestamp, "+%s %H:%M").Output()
	if err != nil {
		return 0, "", false
	}

	parts := strings.Fields(string(out))
	if len(parts) < 2 {
		return 0, "", false
	}
	epoch, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, "", false
	}
	return epoch, parts[1], true
}

// ResolverFunc adapts a function to Resolver, mostly for tests.
type ResolverFunc func(string) (int64, string, bool)

func (f ResolverFunc) Resolve(ts string) (int64, string, bool) { return f(ts) }

// NowEpoch returns the current time in epoch seconds.
func NowEpoch() int64 { return time.Now().Unix() }

// NowHHMM returns the current wall-clock time as HH:MM.
func NowHHMM() string { return time.Now().Format("15:04") }
