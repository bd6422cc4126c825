package serve

import (
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	cmdUtil "github.com/ValentinKolb/sKV/cmd/util"
	"github.com/ValentinKolb/sKV/lib/store/lstore"
	"github.com/ValentinKolb/sKV/rpc/common"
	"github.com/ValentinKolb/sKV/rpc/server"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the sKV server",
		Long:    `Start the sKV server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is SKV_<flag> (e.g. SKV_LOG_LEVEL=debug)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(initConfig)

	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the server will listen (e.g. localhost:8080 for tcp, /tmp/skv.sock for unix)"))

	key = "metrics-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("The address of the http endpoint exposing /metrics and /healthz (e.g. localhost:9090, empty = disabled)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	cmdUtil.SetupTransportFlags(ServeCmd.PersistentFlags())
	cmdUtil.SetupBootstrapFlags(ServeCmd.PersistentFlags())
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	serveCmdConfig.Transport = cmdUtil.GetTransportConfig(viper.GetString("endpoint"))
	serveCmdConfig.MetricsEndpoint = viper.GetString("metrics-endpoint")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	if serveCmdConfig.Transport.Endpoint == "" {
		return errors.New("endpoint must not be empty")
	}

	return common.InitLoggers(serveCmdConfig.LogLevel)
}

// run starts the sKV server and blocks until it is stopped by a signal
func run(_ *cobra.Command, _ []string) error {
	connector, err := cmdUtil.GetConnector()
	if err != nil {
		return err
	}

	bootstrap, err := cmdUtil.GetBootstrapCodec()
	if err != nil {
		return err
	}

	serv := server.NewRPCServer(
		*serveCmdConfig,
		connector,
		bootstrap,
		lstore.NewLocalStore(),
	)

	if serveCmdConfig.MetricsEndpoint != "" {
		stopMetrics := serveMetrics(serveCmdConfig.MetricsEndpoint, serv)
		defer stopMetrics()
	}

	// close the server on SIGINT / SIGTERM, Serve returns afterwards
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)
	go func() {
		if sig, ok := <-signals; ok {
			server.Logger.Infof("Received %s, shutting down", sig)
			if err := serv.Close(); err != nil {
				server.Logger.Errorf("Failed to close server: %v", err)
			}
		}
	}()

	return serv.Serve()
}

// initConfig reads in ENV variables if set.
func initConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("skv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}
