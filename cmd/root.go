package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/sKV/cmd/kv"
	"github.com/ValentinKolb/sKV/cmd/serve"
	"github.com/ValentinKolb/sKV/cmd/util"
	"github.com/ValentinKolb/sKV/rpc/codec"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "skv",
		Short: "encrypted, pipelined key-value store",
		Long: fmt.Sprintf(`sKV (v%s)

A key-value server and client written in Go. Every connection is served by
a single threaded event loop, secured by an AES session key that is exchanged
under a pre-shared bootstrap key, and carries pipelined text commands.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of sKV",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sKV v%s\n", Version)
		},
	}

	// keygenCmd prints a new random bootstrap key
	keygenCmd = &cobra.Command{
		Use:   "keygen",
		Short: "Generate a random bootstrap key",
		Long:  `Generate a random bootstrap key in the form <base64 key>;<base64 iv>. Pass it to server and clients via --bootstrap-key or SKV_BOOTSTRAP_KEY.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := codec.GenerateAESCodec()
			if err != nil {
				return err
			}
			fmt.Println(c.String())
			return nil
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(keygenCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
