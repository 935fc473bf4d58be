package folders

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/transpoze/drivegate/internal/cli/output"
	"github.com/transpoze/drivegate/pkg/config"
)

var listOutput string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List root folders",
	Long: `List the non-trashed folders at the root of the Drive drivegate acts on.

Examples:
  drivegate folders list
  drivegate folders list --output json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

func runList(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(listOutput)
	if err != nil {
		return err
	}

	return withGateway(cmd, func(ctx context.Context, rt *config.Runtime) error {
		entries, err := rt.Service.ListRootFolders(ctx)
		if err != nil {
			return err
		}

		list := FolderList(entries)
		if format == output.FormatTable {
			return output.PrintTable(cmd.OutOrStdout(), list)
		}
		return output.Print(cmd.OutOrStdout(), format, list.views())
	})
}
