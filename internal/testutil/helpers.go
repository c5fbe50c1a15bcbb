package testutil

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
)

// NewTestRNG creates a deterministic random number generator for tests
func NewTestRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NopLogger returns a no-op logger for tests
func NopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// AssertPanic asserts that the given function panics
func AssertPanic(t *testing.T, f func(), msgAndArgs ...interface{}) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic but none occurred: %v", msgAndArgs)
		}
	}()
	f()
}

// AssertPanicIs asserts that f panics with an error matching target via errors.Is
func AssertPanicIs(t *testing.T, target error, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Errorf("Expected panic with %v but none occurred", target)
			return
		}
		err, ok := r.(error)
		if !ok {
			t.Errorf("Expected panic with error %v, got %v", target, r)
			return
		}
		if !errors.Is(err, target) {
			t.Errorf("Expected panic with %v, got %v", target, fmt.Sprint(err))
		}
	}()
	f()
}
