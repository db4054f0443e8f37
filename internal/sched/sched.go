// Package sched pins the calling OS thread to a specific CPU core on
// Linux, giving real effect to a pinned-core scheduling model. The audio
// task pins itself to one core; the telemetry/RDS tasks pin to another,
// matching a dual-core Core A / Core B split.
package sched

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// PinCurrentThread locks the calling goroutine to its current OS thread
// (required before sched_setaffinity has any lasting effect on it, since
// the Go scheduler would otherwise freely migrate the goroutine to a
// different thread) and restricts that thread to the given core.
//
// Callers must keep running on the same goroutine for the affinity to
// remain in effect; typically called once at the top of the orchestrator
// loop's goroutine, before entering steady state.
func PinCurrentThread(core int) error {
	runtime.LockOSThread()
	var set unix.CPUSet
	set.Zero()
	set.Set(core)
	return unix.SchedSetaffinity(0, &set)
}

// UnpinCurrentThread releases the OS thread lock taken by
// PinCurrentThread. Not called during normal operation, since core
// assignment only happens on the init path, but available for tests and
// clean shutdown.
func UnpinCurrentThread() {
	runtime.UnlockOSThread()
}
