package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/compozy/modhost/engine/host"
	"github.com/compozy/modhost/pkg/config"
	"github.com/spf13/cobra"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

const (
	statusOK          = "ok"
	statusUnreachable = "unreachable"
	statusSkipped     = "skipped"
)

const statusColumn = 5

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	okStyle     = cellStyle.Foreground(lipgloss.Color("#4CAF50"))
	failStyle   = cellStyle.Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
)

func CheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Start the host and report every data context",
		Long: `Bootstrap the configured modules, ping each connection and print
the repository bindings. Exits non-zero when a connection is unreachable.`,
		RunE: runCheck,
	}
	cmd.Flags().StringP("format", "f", formatTable, "Output format (table, json)")
	cmd.Flags().Duration("timeout", 10*time.Second, "Timeout for the reachability checks")
	return cmd
}

type checkRow struct {
	Module    string `json:"module"`
	Dialect   string `json:"dialect,omitempty"`
	Bound     int    `json:"bound"`
	Unbound   int    `json:"unbound"`
	LatencyMS int64  `json:"latency_ms"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

func runCheck(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return fmt.Errorf("failed to get timeout flag: %w", err)
	}
	ctx := cmd.Context()
	h, err := host.New(ctx, config.FromContext(ctx))
	if err != nil {
		return err
	}
	defer h.Close()
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	rows := checkRows(h.Check(checkCtx), h.Skipped())
	if err := writeRows(cmd.OutOrStdout(), format, rows); err != nil {
		return err
	}
	failed := 0
	for _, r := range rows {
		if r.Status == statusUnreachable {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d connection(s) unreachable", failed)
	}
	return nil
}

// checkRows lists connection statuses first, then skipped modules by name.
func checkRows(statuses []host.ConnectionStatus, skipped map[string]error) []checkRow {
	rows := make([]checkRow, 0, len(statuses)+len(skipped))
	for _, st := range statuses {
		row := checkRow{
			Module:    st.Module,
			Dialect:   st.Dialect,
			Bound:     st.Bound,
			Unbound:   st.Unbound,
			LatencyMS: st.Latency.Milliseconds(),
			Status:    statusOK,
		}
		if !st.Reachable {
			row.Status = statusUnreachable
			if st.Err != nil {
				row.Error = st.Err.Error()
			}
		}
		rows = append(rows, row)
	}
	names := make([]string, 0, len(skipped))
	for name := range skipped {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rows = append(rows, checkRow{Module: name, Status: statusSkipped, Error: skipped[name].Error()})
	}
	return rows
}

func writeRows(w io.Writer, format string, rows []checkRow) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case formatTable:
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("MODULE", "DIALECT", "BOUND", "UNBOUND", "LATENCY", "STATUS", "ERROR").
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return headerStyle
				case col != statusColumn || row < 0 || row >= len(rows):
					return cellStyle
				case rows[row].Status == statusOK:
					return okStyle
				default:
					return failStyle
				}
			})
		for _, r := range rows {
			t.Row(
				r.Module,
				r.Dialect,
				strconv.Itoa(r.Bound),
				strconv.Itoa(r.Unbound),
				fmt.Sprintf("%dms", r.LatencyMS),
				r.Status,
				r.Error,
			)
		}
		_, err := fmt.Fprintln(w, t.Render())
		return err
	}
	return fmt.Errorf("unsupported format %q", format)
}
