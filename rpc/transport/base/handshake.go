package base

import (
	"bytes"
	"fmt"

	"github.com/ValentinKolb/sKV/rpc/codec"
	"github.com/ValentinKolb/sKV/rpc/common"
	"github.com/ValentinKolb/sKV/rpc/transport"
)

// The handshake installs a per connection session codec:
//
//	client                                   server
//	  | -- bootstrap(key) '\n' ------------------> |
//	  | -- bootstrap(iv) '\n' -------------------> |  PhaseServerKeyReceived
//	  | <------------------- session("OK") '\n' -- |  PhaseConnected
//	  PhaseConnected
//
// Any failure is fatal for the connection.

func handshakeError(remote string, err error) error {
	return &common.ConnectionError{
		Op:   "handshake",
		Addr: remote,
		Err:  fmt.Errorf("%w: %w", common.ErrHandshakeFailed, err),
	}
}

// sendSessionKey generates the session codec and queues key and iv encrypted with
// the bootstrap codec (client, PhaseCreated)
func (l *eventLoop[S]) sendSessionKey(ctx *channelContext[S]) error {
	session, err := codec.GenerateAESCodec()
	if err != nil {
		return handshakeError(ctx.remote, err)
	}

	for _, part := range [][]byte{session.Key(), session.IV()} {
		frame, err := codec.EncodeFrame(l.r.bootstrap, part)
		if err != nil {
			return handshakeError(ctx.remote, err)
		}
		ctx.out.push(frame)
	}

	ctx.session = session
	l.transition(ctx, transport.PhaseClientKeySent)
	return nil
}

// receiveSessionKey installs the session codec sent by the client (server, PhaseCreated)
func (l *eventLoop[S]) receiveSessionKey(ctx *channelContext[S]) error {
	var parts [2][]byte
	for i, frame := range ctx.in.Next(2) {
		part, err := codec.DecodeFrame(l.r.bootstrap, frame)
		if err != nil {
			return handshakeError(ctx.remote, err)
		}
		parts[i] = part
	}

	session, err := codec.NewAESCodec(parts[0], parts[1])
	if err != nil {
		return handshakeError(ctx.remote, err)
	}

	ctx.session = session
	l.transition(ctx, transport.PhaseServerKeyReceived)
	return l.setWrite(ctx, true)
}

// sendAck queues the acknowledgement encrypted with the session codec
// (server, PhaseServerKeyReceived)
func (l *eventLoop[S]) sendAck(ctx *channelContext[S]) error {
	frame, err := codec.EncodeFrame(ctx.session, []byte(common.AckMessage))
	if err != nil {
		return handshakeError(ctx.remote, err)
	}
	ctx.out.push(frame)
	l.established(ctx)
	return nil
}

// receiveAck verifies the acknowledgement of the server (client, PhaseClientKeySent)
func (l *eventLoop[S]) receiveAck(ctx *channelContext[S]) error {
	msg, err := codec.DecodeFrame(ctx.session, ctx.in.Next(1)[0])
	if err != nil {
		return handshakeError(ctx.remote, err)
	}
	if !bytes.Equal(msg, []byte(common.AckMessage)) {
		return handshakeError(ctx.remote, fmt.Errorf("unexpected acknowledgement %q", msg))
	}

	l.established(ctx)
	return l.setWrite(ctx, true)
}

func (l *eventLoop[S]) established(ctx *channelContext[S]) {
	l.transition(ctx, transport.PhaseConnected)
	l.r.metrics.handshakes.Inc()
	Logger.Debugf("Secure connection with %s established", ctx.remote)

	if listener, ok := l.r.handler.(transport.IConnectListener[S]); ok {
		listener.OnConnected(ctx)
	}
}
