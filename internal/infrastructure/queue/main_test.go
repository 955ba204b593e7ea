package queue

import (
	"testing"

	"go.uber.org/goleak"
)

// Every test must leave no worker running.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
