package history

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/scanward/scanward/internal/store"
	"github.com/scanward/scanward/pkg/shared/config"
	"github.com/scanward/scanward/pkg/shared/logger"
)

// RunOptionsHistory holds the arguments for the history command.
type RunOptionsHistory struct {
	Limit int
}

var (
	AppConfig           *config.Config
	historyOptions      RunOptionsHistory
	exampleHistoryUsage = `  # List the last ten scans of a tree
  scanward history ./my-project

  # List every stored scan of a tree
  scanward history --limit 0 ./my-project`
)

var HistoryCmd = &cobra.Command{
	Use:                   "history [--limit N] PATH",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleHistoryUsage,
	Short:                 "Lists stored scans for a source tree, newest first",
	RunE:                  runHistoryCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runHistoryCommand executes the history command.
func runHistoryCommand(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one PATH argument is required")
	}
	rootPath := args[0]

	logger := logger.NewLogger(AppConfig, "core-history")

	storePath := config.SetThen(AppConfig.Store.Path, config.DefaultStoreConfig().Path)
	s, err := store.Open(storePath, logger.Named("store"))
	if err != nil {
		logger.Error("cannot open report store", "path", storePath, "error", err)
		return err
	}
	defer s.Close()

	summaries, err := s.History(cmd.Context(), rootPath, historyOptions.Limit)
	if err != nil {
		logger.Error("cannot list history", "root", rootPath, "error", err)
		return err
	}

	if len(summaries) == 0 {
		fmt.Printf("No stored scans for %s\n", rootPath)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCAN ID\tTIMESTAMP\tRISK\tFINDINGS")
	for _, summary := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%.1f\t%d\n",
			summary.ScanID,
			summary.Timestamp.Format("2006-01-02 15:04:05"),
			summary.RiskScore,
			summary.TotalFindings,
		)
	}
	return w.Flush()
}

func init() {
	HistoryCmd.Flags().IntVarP(&historyOptions.Limit, "limit", "n", 10, "Maximum number of scans to list. Zero lists all.")
	HistoryCmd.Flags().BoolP("help", "h", false, "Show help for the history command.")
}
