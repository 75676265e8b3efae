package backup

import (
	"github.com/spf13/cobra"
	"nimbus/client/internal/api"
	"nimbus/client/internal/config"
	"nimbus/client/pkg/cmd/backup/history"
	"nimbus/client/pkg/cmd/backup/ls"
	"nimbus/client/pkg/cmd/backup/preview"
	"nimbus/client/pkg/cmd/backup/restore"
	"nimbus/client/pkg/cmd/backup/run"
)

func NewBackupCmd(svc api.Service, cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "backup <command>",
		Aliases: []string{"b"},
		Short:   "Run and inspect backups",
		Long:    "Run a backup now, preview what would transfer, restore files and browse the operation history",
	}

	cmd.AddCommand(run.NewRunBackupCmd(svc, cfg))
	cmd.AddCommand(preview.NewPreviewBackupCmd(svc, cfg))
	cmd.AddCommand(history.NewHistoryCmd(svc, cfg))
	cmd.AddCommand(restore.NewRestoreCmd(svc, cfg))
	cmd.AddCommand(ls.NewListFilesCmd(svc, cfg))
	return cmd
}
