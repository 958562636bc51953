package core

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenTCPSkipsBusyPort(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()
	busyPort := busy.Addr().(*net.TCPAddr).Port

	l, port, err := ListenTCP("127.0.0.1", busyPort, 20)
	require.NoError(t, err)
	defer l.Close()
	assert.NotEqual(t, busyPort, port)
	assert.Greater(t, port, busyPort)
}

func TestListenTCPSingleAttemptBusy(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()
	busyPort := busy.Addr().(*net.TCPAddr).Port

	_, _, err = ListenTCP("127.0.0.1", busyPort, 1)
	require.Error(t, err)
	assert.True(t, isAddrInUse(err))
}
