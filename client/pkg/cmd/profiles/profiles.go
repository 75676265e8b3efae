package profiles

import (
	"github.com/spf13/cobra"
	"nimbus/client/internal/api"
	"nimbus/client/pkg/cmd/profiles/create"
	"nimbus/client/pkg/cmd/profiles/delete"
	"nimbus/client/pkg/cmd/profiles/list"
	"nimbus/client/pkg/cmd/profiles/use"
)

func NewProfilesCmd(svc api.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profiles <command>",
		Aliases: []string{"p"},
		Short:   "Manage backup profiles",
		Long:    "Create, view, select and delete backup profiles",
	}

	cmd.AddCommand(create.NewCreateProfileCmd(svc))
	cmd.AddCommand(list.NewListProfilesCmd(svc))
	cmd.AddCommand(use.NewUseProfileCmd(svc))
	cmd.AddCommand(delete.NewDeleteProfileCmd(svc))
	return cmd
}
