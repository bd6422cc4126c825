package util

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ValentinKolb/sKV/rpc/codec"
	"github.com/ValentinKolb/sKV/rpc/common"
	"github.com/ValentinKolb/sKV/rpc/transport"
	"github.com/ValentinKolb/sKV/rpc/transport/tcp"
	"github.com/ValentinKolb/sKV/rpc/transport/unix"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupTransportFlags adds the socket flags shared by server and client to a flag set
func SetupTransportFlags(flags *pflag.FlagSet) {
	key := "transport-write-buffer"
	flags.Int(key, 0, WrapString("The size of the kernel write buffer of every connection (in KB, 0 = os default)"))

	key = "transport-read-buffer"
	flags.Int(key, 0, WrapString("The size of the kernel read buffer of every connection (in KB, 0 = os default)"))

	key = "transport-buffer-increment"
	flags.Int(key, common.DefaultBufferIncrement, WrapString("Initial size of the input buffer of a connection and the step it grows by (in bytes)"))

	key = "transport-poll-timeout"
	flags.Int(key, int(common.DefaultPollTimeout.Milliseconds()), WrapString("Upper bound of a single wait of the event loop (in milliseconds)"))

	key = "transport-tcp-nodelay"
	flags.Bool(key, true, WrapString("Whether to enable TCP_NODELAY (only for the tcp transport)"))

	key = "transport-tcp-keepalive"
	flags.Int(key, 0, WrapString("The keepalive interval (in seconds, only for the tcp transport)"))

	key = "transport-tcp-linger"
	flags.Int(key, 0, WrapString("The linger time (in seconds, only for the tcp transport)"))
}

// SetupBootstrapFlags adds the flags selecting the pre-shared bootstrap key to a flag set
func SetupBootstrapFlags(flags *pflag.FlagSet) {
	key := "bootstrap-key"
	flags.String(key, "", WrapString("The pre-shared bootstrap key in the form <base64 key>;<base64 iv> (see skv keygen)"))

	key = "bootstrap-passphrase"
	flags.String(key, "", WrapString("Derive the bootstrap key from this passphrase instead"))

	key = "ask-passphrase"
	flags.Bool(key, false, WrapString("Read the bootstrap passphrase from the terminal"))
}

// SetupRPCClientFlags adds common RPC connection flags to a command
func SetupRPCClientFlags(cmd *cobra.Command) {
	key := "timeout"
	cmd.PersistentFlags().Int(key, common.DefaultTimeoutSecond, WrapString("The timeout in seconds of a single request"))

	key = "transport-endpoint"
	cmd.PersistentFlags().String(key, "localhost:8080", WrapString("The address of the sKV server (host:port for tcp, a socket path for unix)"))

	SetupTransportFlags(cmd.PersistentFlags())
	SetupBootstrapFlags(cmd.PersistentFlags())
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("skv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetTransportConfig reads the transport configuration from viper
func GetTransportConfig(endpoint string) common.TransportConfig {
	return common.TransportConfig{
		Endpoint:          endpoint,
		PollTimeoutMillis: viper.GetInt("transport-poll-timeout"),
		BufferIncrement:   viper.GetInt("transport-buffer-increment"),
		SocketConf: common.SocketConf{
			WriteBufferSize: viper.GetInt("transport-write-buffer") * 1024,
			ReadBufferSize:  viper.GetInt("transport-read-buffer") * 1024,
		},
		TCPConf: common.TCPConf{
			TCPKeepAliveSec: viper.GetInt("transport-tcp-keepalive"),
			TCPLingerSec:    viper.GetInt("transport-tcp-linger"),
			TCPNoDelay:      viper.GetBool("transport-tcp-nodelay"),
		},
	}
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() *common.ClientConfig {
	return &common.ClientConfig{
		TimeoutSecond: viper.GetInt("timeout"),
		Transport:     GetTransportConfig(viper.GetString("transport-endpoint")),
		LogLevel:      viper.GetString("log-level"),
	}
}

// GetConnector creates the connector of the configured transport
func GetConnector() (transport.IConnector, error) {
	switch viper.GetString("transport") {
	case "tcp":
		return tcp.NewConnector(), nil
	case "unix":
		return unix.NewConnector(), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}
}

// GetBootstrapCodec creates the bootstrap codec from the configured key or passphrase
func GetBootstrapCodec() (codec.ICodec, error) {
	if key := viper.GetString("bootstrap-key"); key != "" {
		return codec.ParseAESCodec(key)
	}

	passphrase := viper.GetString("bootstrap-passphrase")
	if passphrase == "" && viper.GetBool("ask-passphrase") {
		fmt.Fprint(os.Stderr, "Bootstrap passphrase: ")
		pass, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("reading passphrase: %w", err)
		}
		passphrase = string(pass)
	}
	if passphrase == "" {
		return nil, errors.New("no bootstrap key configured (use --bootstrap-key, --bootstrap-passphrase or --ask-passphrase)")
	}
	return codec.DeriveAESCodec(passphrase)
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
