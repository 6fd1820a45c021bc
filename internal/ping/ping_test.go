package ping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPingHostRejectsEmptyTarget(t *testing.T) {
	_, err := PingHost("  ", Options{})
	assert.EqualError(t, err, "ping: empty target")
}
