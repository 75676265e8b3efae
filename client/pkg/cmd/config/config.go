package configcmd

import (
	"github.com/spf13/cobra"
	"nimbus/client/internal/api"
	initcmd "nimbus/client/pkg/cmd/config/init"
)

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config <command>",
		Aliases: []string{"c"},
		Short:   "Manage nimbus client configuration",
	}

	cmd.AddCommand(initcmd.NewConfigInitCmd(api.NewPinger()))
	return cmd
}
