package sockopts

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTCPKeepAliveUnmarshalsBareDuration(t *testing.T) {
	var k TCPKeepAlive
	require.NoError(t, json.Unmarshal([]byte(`"30s"`), &k))
	require.NotNil(t, k.Time)
	require.Equal(t, 30*time.Second, *k.Time)
	require.Nil(t, k.Interval)
	require.Nil(t, k.Retries)
}

func TestTCPKeepAliveUnmarshalsFullStruct(t *testing.T) {
	var k TCPKeepAlive
	require.NoError(t, json.Unmarshal([]byte(`{"time":"30s","interval":"5s","retries":3}`), &k))
	require.Equal(t, 30*time.Second, *k.Time)
	require.Equal(t, 5*time.Second, *k.Interval)
	require.Equal(t, 3, *k.Retries)
}

func TestTCPKeepAliveUnmarshalsPartialStruct(t *testing.T) {
	var k TCPKeepAlive
	require.NoError(t, json.Unmarshal([]byte(`{"time":"10s"}`), &k))
	require.Equal(t, 10*time.Second, *k.Time)
	require.Nil(t, k.Interval)
	require.Nil(t, k.Retries)
}

func TestTCPKeepAliveRejectsGarbage(t *testing.T) {
	var k TCPKeepAlive
	require.Error(t, json.Unmarshal([]byte(`42.5`), &k))
}
