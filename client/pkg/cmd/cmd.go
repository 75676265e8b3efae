package cmd

import (
	"github.com/spf13/cobra"
	"nimbus/client/internal/api"
	"nimbus/client/internal/auth"
	"nimbus/client/internal/config"
	"nimbus/client/pkg/cmd/backup"
	configcmd "nimbus/client/pkg/cmd/config"
	"nimbus/client/pkg/cmd/logs"
	"nimbus/client/pkg/cmd/profiles"
	"nimbus/client/pkg/cmd/schedule"
	"nimbus/client/pkg/cmd/status"
	"nimbus/client/pkg/cmd/storage"
)

func New() (*cobra.Command, error) {
	cfg, err := config.Parse()
	if err != nil {
		return nil, err
	}

	accessKey, err := auth.Get()
	if err != nil {
		accessKey = ""
	}

	apiClient := api.NewClient(cfg.Host, accessKey)
	svc := api.NewService(apiClient)

	cmd := &cobra.Command{
		Use:   "nimbus",
		Short: "nimbus - scheduled cloud backups for your folders",
	}

	cmd.AddCommand(configcmd.NewConfigCmd())
	cmd.AddCommand(profiles.NewProfilesCmd(svc))
	cmd.AddCommand(backup.NewBackupCmd(svc, cfg))
	cmd.AddCommand(schedule.NewScheduleCmd(svc, cfg))
	cmd.AddCommand(storage.NewStorageCmd(svc))
	cmd.AddCommand(logs.NewLogsCmd(svc, cfg))
	cmd.AddCommand(status.NewStatusCmd(svc))
	return cmd, nil
}
