// Package folders implements folder maintenance subcommands that talk to
// Google Drive directly, without a running server.
package folders

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/transpoze/drivegate/internal/logger"
	"github.com/transpoze/drivegate/pkg/config"
	"github.com/transpoze/drivegate/pkg/drive"
)

// Cmd is the folders subcommand.
var Cmd = &cobra.Command{
	Use:   "folders",
	Short: "Manage Drive folders",
	Long: `Inspect and maintain the folders drivegate manages, using the same
configuration and credentials as the server.

Subcommands:
  list        List root folders
  ensure      Find or create a folder
  hierarchy   Find or create a school/class/subject hierarchy
  delete-all  Delete every root folder`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(ensureCmd)
	Cmd.AddCommand(hierarchyCmd)
	Cmd.AddCommand(deleteAllCmd)
}

// withGateway loads the configuration, builds a gateway and runs fn with it.
func withGateway(cmd *cobra.Command, fn func(ctx context.Context, rt *config.Runtime) error) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: "stderr"}); err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, 5*time.Minute)
	defer cancel()

	rt, err := config.InitializeGateway(ctx, cfg, "cli")
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	return fn(ctx, rt)
}

// FolderList renders Drive folders as a table.
type FolderList []*drive.Entry

// Headers implements output.TableRenderer.
func (l FolderList) Headers() []string {
	return []string{"Name", "ID", "Created"}
}

// Rows implements output.TableRenderer.
func (l FolderList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, e := range l {
		created := ""
		if !e.CreatedTime.IsZero() {
			created = e.CreatedTime.Local().Format(time.DateTime)
		}
		rows = append(rows, []string{e.Name, e.ID, created})
	}
	return rows
}

// folderView is the JSON/YAML form of a folder.
type folderView struct {
	ID      string    `json:"id" yaml:"id"`
	Name    string    `json:"name" yaml:"name"`
	Created time.Time `json:"created" yaml:"created"`
}

func (l FolderList) views() []folderView {
	out := make([]folderView, 0, len(l))
	for _, e := range l {
		out = append(out, folderView{ID: e.ID, Name: e.Name, Created: e.CreatedTime})
	}
	return out
}

func printID(cmd *cobra.Command, label, id string) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", label+":", id)
}
