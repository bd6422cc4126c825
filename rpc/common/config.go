package common

import (
	"fmt"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Defaults
// --------------------------------------------------------------------------

const (
	// DefaultPollTimeout bounds a single wait on the multiplexer so the reactor can observe close requests
	DefaultPollTimeout = 10 * time.Second
	// DefaultBufferIncrement is the initial size of an input buffer and the step it grows by
	DefaultBufferIncrement = 4096
	// DefaultTimeoutSecond is used by clients that do not configure a timeout
	DefaultTimeoutSecond = 10
)

// --------------------------------------------------------------------------
// Transport configuration
// --------------------------------------------------------------------------

// SocketConf holds the kernel buffer sizes applied to every connection (0 = os default)
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds tcp specific socket options (ignored by the unix transport)
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int
}

// TransportConfig holds the parameters of one reactor
type TransportConfig struct {
	// Endpoint is the address to listen on (server) or to connect to (client)
	Endpoint string
	// PollTimeoutMillis bounds each wait on the multiplexer (0 = DefaultPollTimeout)
	PollTimeoutMillis int
	// BufferIncrement is the step by which input buffers grow (0 = DefaultBufferIncrement)
	BufferIncrement int

	SocketConf SocketConf
	TCPConf    TCPConf
}

// PollTimeout returns the effective poll timeout
func (c *TransportConfig) PollTimeout() time.Duration {
	if c.PollTimeoutMillis <= 0 {
		return DefaultPollTimeout
	}
	return time.Duration(c.PollTimeoutMillis) * time.Millisecond
}

// Increment returns the effective buffer increment
func (c *TransportConfig) Increment() int {
	if c.BufferIncrement <= 0 {
		return DefaultBufferIncrement
	}
	return c.BufferIncrement
}

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds all configuration parameters of the server
type ServerConfig struct {
	Transport TransportConfig

	// MetricsEndpoint is the address of the http endpoint exposing metrics (empty = disabled)
	MetricsEndpoint string

	// Logging configuration
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	addSection, addField := formatHelpers(&sb)

	// RPC settings
	addSection("RPC Server")
	addField("Endpoint", c.Transport.Endpoint)
	addField("Poll Timeout", c.Transport.PollTimeout().String())
	addField("Buffer Increment", fmt.Sprintf("%d bytes", c.Transport.Increment()))
	writeSocketFields(addField, c.Transport)

	// Metrics
	addSection("Metrics")
	if c.MetricsEndpoint == "" {
		addField("Endpoint", "disabled")
	} else {
		addField("Endpoint", c.MetricsEndpoint)
	}

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// ClientConfig holds all configuration parameters of a client
type ClientConfig struct {
	Transport     TransportConfig
	TimeoutSecond int
	LogLevel      string
}

// Timeout returns the effective per request timeout
func (c *ClientConfig) Timeout() time.Duration {
	if c.TimeoutSecond <= 0 {
		return DefaultTimeoutSecond * time.Second
	}
	return time.Duration(c.TimeoutSecond) * time.Second
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	addSection, addField := formatHelpers(&sb)

	// General Client Settings
	addSection("Client Configuration")
	addField("Endpoint", c.Transport.Endpoint)
	addField("Timeout", c.Timeout().String())
	addField("Poll Timeout", c.Transport.PollTimeout().String())
	writeSocketFields(addField, c.Transport)

	return sb.String()
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func formatHelpers(sb *strings.Builder) (func(string), func(string, string)) {
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}
	return addSection, addField
}

func writeSocketFields(addField func(string, string), c TransportConfig) {
	sizeOrDefault := func(n int) string {
		if n <= 0 {
			return "os default"
		}
		return fmt.Sprintf("%d KB", n/1024)
	}
	addField("Write Buffer", sizeOrDefault(c.SocketConf.WriteBufferSize))
	addField("Read Buffer", sizeOrDefault(c.SocketConf.ReadBufferSize))
	addField("TCP NoDelay", fmt.Sprintf("%t", c.TCPConf.TCPNoDelay))
	if c.TCPConf.TCPKeepAliveSec > 0 {
		addField("TCP KeepAlive", fmt.Sprintf("%d sec", c.TCPConf.TCPKeepAliveSec))
	}
}
