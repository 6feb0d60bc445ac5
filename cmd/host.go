package cmd

import (
	"github.com/jvano/azure-webjobs-sdk-script/cmd/host"
	"github.com/spf13/cobra"
)

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "host related commands",
}

func init() {
	hostCmd.AddCommand(host.NewHostStartCommand())

	rootCmd.AddCommand(hostCmd)
}
