package folders

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/transpoze/drivegate/pkg/config"
)

var ensureParent string

var ensureCmd = &cobra.Command{
	Use:   "ensure <name>",
	Short: "Find or create a folder",
	Long: `Return the id of the folder with the given name under --parent (the Drive
root by default), creating it if it does not exist.

Examples:
  drivegate folders ensure "Springfield Elementary"
  drivegate folders ensure "Grade 5" --parent 1AbCdEf`,
	Args: cobra.ExactArgs(1),
	RunE: runEnsure,
}

var hierarchyCmd = &cobra.Command{
	Use:   "hierarchy <school> <class> <subject>",
	Short: "Find or create a school/class/subject hierarchy",
	Long: `Ensure the three-level folder hierarchy used for recordings and print the
id of each level.

Examples:
  drivegate folders hierarchy "Springfield Elementary" "Grade 5" Math`,
	Args: cobra.ExactArgs(3),
	RunE: runHierarchy,
}

func init() {
	ensureCmd.Flags().StringVar(&ensureParent, "parent", "", "Parent folder id (default: Drive root)")
}

func runEnsure(cmd *cobra.Command, args []string) error {
	return withGateway(cmd, func(ctx context.Context, rt *config.Runtime) error {
		id, err := rt.Service.EnsureFolder(ctx, args[0], ensureParent)
		if err != nil {
			return err
		}
		printID(cmd, "Folder", id)
		return nil
	})
}

func runHierarchy(cmd *cobra.Command, args []string) error {
	return withGateway(cmd, func(ctx context.Context, rt *config.Runtime) error {
		h, err := rt.Service.EnsureHierarchy(ctx, args[0], args[1], args[2])
		if err != nil {
			return err
		}
		printID(cmd, "School", h.TopID)
		printID(cmd, "Class", h.MiddleID)
		printID(cmd, "Subject", h.LeafID)
		return nil
	})
}
