package schedule

import (
	"github.com/spf13/cobra"
	"nimbus/client/internal/api"
	"nimbus/client/internal/config"
	"nimbus/client/pkg/cmd/schedule/remove"
	"nimbus/client/pkg/cmd/schedule/set"
	"nimbus/client/pkg/cmd/schedule/status"
)

func NewScheduleCmd(svc api.Service, cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schedule <command>",
		Aliases: []string{"s"},
		Short:   "Manage automatic backups",
		Long:    "Set, inspect and remove the automatic backup schedule of a profile",
	}

	cmd.AddCommand(set.NewSetScheduleCmd(svc, cfg))
	cmd.AddCommand(status.NewScheduleStatusCmd(svc, cfg))
	cmd.AddCommand(remove.NewRemoveScheduleCmd(svc, cfg))
	return cmd
}
