// Package cli provides the interactive gigbook command-line client.
//
// It drives the session layer: sign up or sign in (remote first, on-device
// when the API is unreachable), log shows, keep tickets and "notify me"
// markers, and edit the profile. A background watcher pings the API and
// shows online/offline status in the prompt.
//
// The REPL is started with App.Run, which blocks until the user exits.
package cli
