package cli

import (
	"encoding/json"
	"fmt"

	"github.com/compozy/modhost/engine/module"
	"github.com/compozy/modhost/pkg/version"
	"github.com/spf13/cobra"
)

func VersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information and the compiled-in modules",
		// No configuration is needed to print the version.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return fmt.Errorf("failed to get format flag: %w", err)
			}
			info := versionInfo{Info: version.Get()}
			for _, d := range module.Default.All() {
				info.Modules = append(info.Modules, moduleInfo{ID: d.ID, Version: d.Version})
			}
			out := cmd.OutOrStdout()
			if format == formatJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			fmt.Fprintf(out, "modhost %s (%s, built %s, %s)\n", info.Version, info.CommitHash, info.BuildDate, info.GoVersion)
			for _, m := range info.Modules {
				fmt.Fprintf(out, "  %s %s\n", m.ID, m.Version)
			}
			return nil
		},
	}
	cmd.Flags().StringP("format", "f", "text", "Output format (text, json)")
	return cmd
}

type moduleInfo struct {
	ID      string `json:"id"`
	Version string `json:"version"`
}

type versionInfo struct {
	version.Info
	Modules []moduleInfo `json:"modules"`
}
