package events

import (
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
)

func TestNewNATSPublisher_Unreachable(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:1", nats.Timeout(200*time.Millisecond))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "connecting to NATS at nats://127.0.0.1:1")
}
