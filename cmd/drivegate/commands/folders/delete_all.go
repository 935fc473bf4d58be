package folders

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/transpoze/drivegate/internal/cli/prompt"
	"github.com/transpoze/drivegate/pkg/config"
	"github.com/transpoze/drivegate/pkg/gateway"
)

var deleteAllForce bool

var deleteAllCmd = &cobra.Command{
	Use:   "delete-all",
	Short: "Delete every root folder",
	Long: `Delete every non-trashed folder at the root of the Drive, with all of
their contents. This cannot be undone from drivegate.

You are asked to type the confirmation word unless --force is given.

Examples:
  drivegate folders delete-all
  drivegate folders delete-all --force`,
	Args: cobra.NoArgs,
	RunE: runDeleteAll,
}

func init() {
	deleteAllCmd.Flags().BoolVarP(&deleteAllForce, "force", "f", false, "Skip confirmation prompt")
}

func runDeleteAll(cmd *cobra.Command, args []string) error {
	ok, err := prompt.ConfirmDangerWithForce("Delete ALL root folders", gateway.DeleteAllConfirmation, deleteAllForce)
	if err != nil {
		if prompt.IsAborted(err) {
			return fmt.Errorf("aborted")
		}
		return err
	}
	if !ok {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Nothing deleted")
		return nil
	}

	return withGateway(cmd, func(ctx context.Context, rt *config.Runtime) error {
		res, err := rt.Service.DeleteAllFolders(ctx, gateway.DeleteAllConfirmation)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, r := range res.Results {
			if r.Err != nil {
				_, _ = fmt.Fprintf(out, "  FAILED  %s (%s): %v\n", r.Folder, r.FolderID, r.Err)
				continue
			}
			_, _ = fmt.Fprintf(out, "  deleted %s (%s)\n", r.Folder, r.FolderID)
		}
		_, _ = fmt.Fprintf(out, "Deleted %d of %d folders\n", res.Succeeded(), res.Total)
		return nil
	})
}
