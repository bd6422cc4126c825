// Package unix implements the Unix domain socket connector of the sKV reactor for
// processes running on the same machine. The endpoint is the path of the socket file,
// a stale file is removed before the server binds. Only SocketConf applies, TCPConf
// options are ignored.
package unix
