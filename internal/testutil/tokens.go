// Package testutil provides testing utilities for gcibot.
package testutil

// Safe test credentials that won't trigger secret scanning.
// Keep them obviously fake.
const (
	// FakeIRCPassword is a server password (PASS) for test IRC servers.
	FakeIRCPassword = "test-irc-password"
)

// CanonicalTaskURL is a task link as posted in chat.
const CanonicalTaskURL = "https://codein.withgoogle.com/tasks/123/"
