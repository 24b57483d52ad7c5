// ABOUTME: TUI command that opens the interactive marketplace browser
// ABOUTME: Shares the configured client and session with the other commands

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Modhak129/WEB-freelance/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive UI",
	Run: func(cmd *cobra.Command, args []string) {
		exit(runTUI)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// runTUI runs the interactive UI until the user quits
func runTUI(ctx context.Context) int {
	w := os.Stderr
	e, code := setup(ctx, w)
	if code != exitOK {
		return code
	}
	defer e.Close()

	e.log.Info().Str("api_url", e.cfg.APIURL).Msg("starting tui")
	err := tui.Run(e.api, e.session, tui.Options{
		ConfigDir: e.cfg.ConfigDir,
		Timeout:   e.cfg.RequestTimeout,
		Logger:    e.log,
	})
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}
