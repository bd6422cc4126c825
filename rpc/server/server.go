package server

import (
	"github.com/ValentinKolb/sKV/lib/store"
	"github.com/ValentinKolb/sKV/rpc/codec"
	"github.com/ValentinKolb/sKV/rpc/common"
	"github.com/ValentinKolb/sKV/rpc/transport"
	"github.com/ValentinKolb/sKV/rpc/transport/base"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("rpc")

// responseQueue holds the responses of one connection that were not written yet
type responseQueue struct {
	pending [][]byte
}

type rpcServer struct {
	config  common.ServerConfig
	store   store.IStore
	adapter IRPCServerAdapter
	reactor *base.Reactor[*responseQueue]
}

// NewRPCServer creates a new RPC server serving store on config.Transport.Endpoint.
// Clients must use the same bootstrap codec.
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		tcp.NewConnector(),
//		bootstrap,
//		lstore.NewLocalStore(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	connector transport.IConnector,
	bootstrap codec.ICodec,
	store store.IStore,
) IRPCServer {
	s := &rpcServer{
		config:  config,
		store:   store,
		adapter: NewIStoreServerAdapter(),
	}
	s.reactor = base.NewServerReactor[*responseQueue](connector, config.Transport, bootstrap, s)

	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())
	return s
}

// --------------------------------------------------------------------------
// Interface Methods (docu see server.IRPCServer)
// --------------------------------------------------------------------------

func (s *rpcServer) Start() error {
	if err := s.reactor.Connect(); err != nil {
		return err
	}
	Logger.Infof("sKV server listening on %s", s.reactor.Addr())
	return nil
}

func (s *rpcServer) Serve() error {
	if err := s.Start(); err != nil {
		return err
	}
	<-s.reactor.Done()
	return s.reactor.Err()
}

func (s *rpcServer) Close() error {
	return s.reactor.Close()
}

func (s *rpcServer) Addr() string {
	return s.reactor.Addr()
}

func (s *rpcServer) Connections() []transport.ConnectionInfo {
	return s.reactor.Connections()
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IHandler)
// --------------------------------------------------------------------------

func (s *rpcServer) NewState() *responseQueue {
	return &responseQueue{}
}

func (s *rpcServer) OnMessage(conn transport.IConnection[*responseQueue], msg []byte) error {
	resp := s.adapter.Handle(string(msg), s.store)
	q := conn.State()
	q.pending = append(q.pending, []byte(resp))
	return nil
}

func (s *rpcServer) OnWritable(conn transport.IConnection[*responseQueue]) ([][]byte, error) {
	q := conn.State()
	out := q.pending
	q.pending = nil
	return out, nil
}

func (s *rpcServer) OnConnected(conn transport.IConnection[*responseQueue]) {
	Logger.Debugf("Client %s connected", conn.RemoteAddr())
}

func (s *rpcServer) OnDisconnected(conn transport.IConnection[*responseQueue], err error) {
	if n := len(conn.State().pending); n > 0 {
		Logger.Warningf("Client %s disconnected with %d unsent responses", conn.RemoteAddr(), n)
	}
}
