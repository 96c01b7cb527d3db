package cmd

import (
	"fmt"
	"os"

	"github.com/abhisek/mbeprep/internal/app"
	"github.com/abhisek/mbeprep/internal/bankfile"
	"github.com/abhisek/mbeprep/internal/library"
	"github.com/abhisek/mbeprep/internal/screens/home"
	"github.com/abhisek/mbeprep/internal/session"
	"github.com/spf13/cobra"
)

// runApp opens the store, restores any saved run, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	st, cfg, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	lib := library.New(st)
	bank, err := lib.Load(ctx)
	if err != nil {
		return err
	}
	engine := session.NewEngine(bank, st.Questions(), st.AppState())

	settings, err := engine.LoadSettings(ctx, cfg.Quiz.Settings())
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning: saved settings unreadable, using defaults:", err)
	}
	if err := applyQuizFlags(cmd, &settings); err != nil {
		return err
	}

	var restored bool
	if fresh, _ := cmd.Flags().GetBool("fresh"); fresh {
		if err := session.ClearSnapshot(ctx, st.AppState()); err != nil {
			return fmt.Errorf("discard saved run: %w", err)
		}
	} else {
		restored = engine.Restore(ctx) != nil
	}

	return app.Run(app.Options{
		Home: home.Options{
			Engine:    engine,
			Library:   lib,
			Fetcher:   bankfile.NewFetcher(nil),
			SampleURL: cfg.SampleURL,
			ExportDir: cfg.ExportDir,
			Settings:  settings,
		},
		Restored: restored,
	})
}
