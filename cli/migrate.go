package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/compozy/modhost/engine/host"
	"github.com/compozy/modhost/engine/infra/migrate"
	"github.com/compozy/modhost/pkg/config"
	"github.com/spf13/cobra"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the schema of every module data context",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply the embedded migrations of every bound module",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withHost(cmd.Context(), func(h *host.Host) error {
					versions, err := h.Migrate(cmd.Context())
					if err != nil {
						return err
					}
					return printVersions(cmd.OutOrStdout(), versions)
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the applied migration version of every bound module",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withHost(cmd.Context(), func(h *host.Host) error {
					versions := map[string]int64{}
					for _, name := range h.Data().Connections() {
						opts, _ := h.Data().Options(name)
						v, err := migrate.Version(cmd.Context(), opts)
						if err != nil {
							return fmt.Errorf("module %s: %w", name, err)
						}
						versions[name] = v
					}
					return printVersions(cmd.OutOrStdout(), versions)
				})
			},
		},
	)
	return cmd
}

// withHost starts a host without automatic migrations and closes it after fn.
func withHost(ctx context.Context, fn func(h *host.Host) error) error {
	cfg := *config.FromContext(ctx)
	cfg.Database.AutoMigrate = false
	h, err := host.New(ctx, &cfg)
	if err != nil {
		return err
	}
	defer h.Close()
	return fn(h)
}

func printVersions(w io.Writer, versions map[string]int64) error {
	names := make([]string, 0, len(versions))
	for name := range versions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := fmt.Fprintf(w, "%s\t%d\n", name, versions[name]); err != nil {
			return err
		}
	}
	return nil
}
