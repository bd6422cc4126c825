package kv

import (
	"context"
	"fmt"

	"github.com/ValentinKolb/sKV/cmd/util"
	"github.com/ValentinKolb/sKV/rpc/client"
	"github.com/ValentinKolb/sKV/rpc/common"
	"github.com/spf13/cobra"
)

var (
	rpcMap *client.RPCMap

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:                "kv",
		Short:              "Perform key-value store operations",
		PersistentPreRunE:  setupKVClient,
		PersistentPostRunE: closeKVClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the KV command
	util.SetupRPCClientFlags(KeyValueCommands)

	key := "log-level"
	KeyValueCommands.PersistentFlags().String(key, "warn", util.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	// Add subcommands
	KeyValueCommands.AddCommand(putCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(rmCmd)
	KeyValueCommands.AddCommand(sizeCmd)
	KeyValueCommands.AddCommand(clearCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// setupKVClient binds the flags and connects the map client
func setupKVClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	config := util.GetClientConfig()
	if err := common.InitLoggers(config.LogLevel); err != nil {
		return err
	}

	var err error
	rpcMap, err = newClient(config)
	return err
}

// newClient connects a map client and waits for the handshake
func newClient(config *common.ClientConfig) (*client.RPCMap, error) {
	connector, err := util.GetConnector()
	if err != nil {
		return nil, err
	}

	bootstrap, err := util.GetBootstrapCodec()
	if err != nil {
		return nil, err
	}

	m, err := client.NewRPCMap(*config, connector, bootstrap)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout())
	defer cancel()
	if err := m.WaitConnected(ctx); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", config.Transport.Endpoint, err)
	}
	return m, nil
}

// closeKVClient closes the map client after the command ran
func closeKVClient(_ *cobra.Command, _ []string) error {
	if rpcMap == nil {
		return nil
	}
	return rpcMap.Close()
}
