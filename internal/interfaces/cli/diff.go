package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lite-lake/dnswatch/internal/application/report"
	"github.com/lite-lake/dnswatch/internal/domain/entity"
	"github.com/lite-lake/dnswatch/internal/domain/service"
	"github.com/lite-lake/dnswatch/internal/domain/valueobject"
	"github.com/lite-lake/dnswatch/internal/infrastructure/logger"
	"github.com/lite-lake/dnswatch/internal/infrastructure/state"
)

func newDiffCommand(ctx *Context, logCfg *logger.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <previous> <current>",
		Short: "Compare two snapshot files",
		Long: "Compare two snapshot files offline and print the added, modified and deleted\n" +
			"records. Nothing is fetched, sent or saved.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := logger.Init(logCfg); err != nil {
				return err
			}
			previous, err := loadSnapshotFile(cmd, args[0])
			if err != nil {
				return err
			}
			current, err := loadSnapshotFile(cmd, args[1])
			if err != nil {
				return err
			}
			printChanges(cmd.OutOrStdout(), service.NewDifferService().Compare(previous, current))
			return nil
		},
	}
}

func loadSnapshotFile(cmd *cobra.Command, path string) (*entity.Snapshot, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("snapshot file %s does not exist", path)
	}
	return state.NewFileStore(path).Load(cmd.Context())
}

func printChanges(w io.Writer, cs *valueobject.ChangeSet) {
	for _, d := range cs.Duplicates {
		fmt.Fprintln(w, WarningStyle.Render(fmt.Sprintf("! %v (ignored)", d.Err())))
	}

	if !cs.HasChanges() {
		fmt.Fprintln(w, "No changes detected.")
		return
	}

	for i, line := range report.Summary(cs) {
		switch {
		case i == 0:
			fmt.Fprintln(w, TitleStyle.Render(line.Text))
		case line.Change == nil:
			fmt.Fprintln(w, HelpStyle.Render(line.Text))
		default:
			prefix, style := changeStyle(line.Change.Type)
			fmt.Fprintf(w, "%s %s\n", style.Render(prefix), style.Render(strings.TrimPrefix(line.Text, "• ")))
			if line.Change.Type == valueobject.ChangeTypeUpdate {
				fmt.Fprintln(w, HelpStyle.Render(fmt.Sprintf("    %s -> %s", describe(line.Change.Old), describe(line.Change.New))))
			}
		}
	}
	fmt.Fprintln(w, HelpStyle.Render(fmt.Sprintf("%d added, %d modified, %d deleted", len(cs.Added), len(cs.Modified), len(cs.Deleted))))
}

func describe(r *entity.Record) string {
	if r == nil {
		return "-"
	}
	if r.IsAlias() {
		return fmt.Sprintf("%s ALIAS %s", r.Type, r.AliasTarget.DNSName)
	}
	return fmt.Sprintf("%s %d [%s]", r.Type, r.TTL, strings.Join(r.Values, ", "))
}
