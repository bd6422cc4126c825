package util

import (
	"strings"
	"testing"

	"github.com/ValentinKolb/sKV/rpc/codec"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 30)
	for _, line := range strings.Split(WrapString(text), "\n") {
		require.LessOrEqual(t, len(line), Wrap)
	}
	require.Equal(t, "short text", WrapString("  short   text "))
}

func TestGetConnector(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Set("transport", "tcp")
	c, err := GetConnector()
	require.NoError(t, err)
	require.Equal(t, "tcp", c.GetName())

	viper.Set("transport", "unix")
	c, err = GetConnector()
	require.NoError(t, err)
	require.Equal(t, "unix", c.GetName())

	viper.Set("transport", "http")
	_, err = GetConnector()
	require.Error(t, err)
}

func TestGetBootstrapCodec(t *testing.T) {
	t.Cleanup(viper.Reset)

	generated, err := codec.GenerateAESCodec()
	require.NoError(t, err)

	viper.Set("bootstrap-key", generated.String())
	c, err := GetBootstrapCodec()
	require.NoError(t, err)
	require.Equal(t, generated.String(), c.(*codec.AESCodec).String())

	viper.Set("bootstrap-key", "")
	viper.Set("bootstrap-passphrase", "secret")
	c, err = GetBootstrapCodec()
	require.NoError(t, err)
	derived, err := codec.DeriveAESCodec("secret")
	require.NoError(t, err)
	require.Equal(t, derived.String(), c.(*codec.AESCodec).String())

	viper.Set("bootstrap-passphrase", "")
	_, err = GetBootstrapCodec()
	require.Error(t, err)
}

func TestGetClientConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Set("timeout", 3)
	viper.Set("transport-endpoint", "localhost:9000")
	viper.Set("transport-write-buffer", 64)
	viper.Set("transport-tcp-nodelay", true)

	config := GetClientConfig()
	require.Equal(t, 3, config.TimeoutSecond)
	require.Equal(t, "localhost:9000", config.Transport.Endpoint)
	require.Equal(t, 64*1024, config.Transport.SocketConf.WriteBufferSize)
	require.True(t, config.Transport.TCPConf.TCPNoDelay)
}
