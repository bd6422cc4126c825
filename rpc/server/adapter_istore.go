package server

import (
	"fmt"
	"strconv"

	"github.com/ValentinKolb/sKV/lib/store"
	"github.com/ValentinKolb/sKV/rpc/common"
	"github.com/VictoriaMetrics/metrics"
)

func NewIStoreServerAdapter() IRPCServerAdapter {
	return &iStoreServerAdapterImpl{}
}

type iStoreServerAdapterImpl struct{}

func (adapter *iStoreServerAdapterImpl) Handle(req string, store store.IStore) string {
	// Check for nil store
	if store == nil {
		return common.NewErrorResponse("handler: store is nil")
	}

	cmd, args := common.ParseCommand(req)
	countRequest(cmd)

	// Handle different commands
	switch cmd {
	case common.CmdPut:
		if len(args) != 2 {
			return arityError(cmd, 2, len(args))
		}
		return valueOrNull(store.Put(args[0], args[1]))
	case common.CmdGet:
		if len(args) != 1 {
			return arityError(cmd, 1, len(args))
		}
		return valueOrNull(store.Get(args[0]))
	case common.CmdRemove:
		if len(args) != 1 {
			return arityError(cmd, 1, len(args))
		}
		return valueOrNull(store.Remove(args[0]))
	case common.CmdSize:
		if len(args) != 0 {
			return arityError(cmd, 0, len(args))
		}
		return strconv.Itoa(store.Size())
	case common.CmdClear:
		if len(args) != 0 {
			return arityError(cmd, 0, len(args))
		}
		return strconv.Itoa(store.Clear())
	default:
		return common.NewErrorResponse(fmt.Sprintf("%s: %q", common.ErrUnsupportedCommand, cmd))
	}
}

func valueOrNull(value string, ok bool) string {
	if !ok {
		return common.NullValue
	}
	return value
}

func arityError(cmd string, expected, got int) string {
	return common.NewErrorResponse(fmt.Sprintf("wrong number of arguments for %q: expected %d, got %d", cmd, expected, got))
}

func countRequest(cmd string) {
	switch cmd {
	case common.CmdPut, common.CmdGet, common.CmdRemove, common.CmdSize, common.CmdClear:
	default:
		cmd = "unknown"
	}
	metrics.GetOrCreateCounter(fmt.Sprintf(`skv_server_requests_total{command=%q}`, cmd)).Inc()
}
