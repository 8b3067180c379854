// Package audio provides the playback engine and the audio output
// abstraction. The engine owns exactly one loaded media resource at a
// time and reports progress, play state, errors and completion to
// registered observers. Output device access goes through the Context
// interface so tests can run without real hardware.
package audio
