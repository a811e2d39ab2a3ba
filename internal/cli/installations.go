package cli

import (
	"sort"

	"github.com/spf13/cobra"
)

func newInstallationsCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "installations",
		Short: "List installations known to the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer env.close()

			scopes, err := env.backend.ListScopes(cmd.Context())
			if err != nil {
				return err
			}
			sort.Strings(scopes)
			out := cmd.OutOrStdout()
			for _, scope := range scopes {
				writeLine(out, "%s", scope)
			}
			return nil
		},
	}
}
