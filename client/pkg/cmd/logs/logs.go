package logs

import (
	"github.com/spf13/cobra"
	"nimbus/client/internal/api"
	"nimbus/client/internal/config"
	"nimbus/client/pkg/cmd/logs/sync"
	"nimbus/client/pkg/cmd/logs/watch"
)

func NewLogsCmd(svc api.Service, cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs <command>",
		Short: "Sync and watch backup activity",
	}

	cmd.AddCommand(sync.NewSyncLogsCmd(svc))
	cmd.AddCommand(watch.NewWatchCmd(svc, cfg))
	return cmd
}
