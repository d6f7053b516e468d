package main

import (
	"errors"
	"fmt"

	"github.com/ncruces/zenity"
	"github.com/spf13/cobra"

	"github.com/sloria/stimulus/internal/config"
)

// newSetupCmd walks the operator through native dialogs for the paradigm
// script, stimuli directory, output file and participant ID, and persists
// the choices to the config cache for subsequent runs.
func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactively choose script, stimuli directory and output",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			cfg.LoadCache()

			script, err := zenity.SelectFile(
				zenity.Title("Paradigm script"),
				zenity.FileFilters{{
					Name:     "Paradigm scripts",
					Patterns: []string{"*.yaml", "*.yml"},
				}},
			)
			if err != nil {
				return cancelable(err)
			}
			cfg.ScriptFile = script

			dir, err := zenity.SelectFile(
				zenity.Title("Stimuli directory"),
				zenity.Directory(),
			)
			if err != nil && !errors.Is(err, zenity.ErrCanceled) {
				return err
			}
			if err == nil {
				cfg.StimuliDir = dir
			}

			out, err := zenity.SelectFileSave(
				zenity.Title("Dataset destination"),
				zenity.ConfirmOverwrite(),
				zenity.Filename(cfg.OutputFile),
			)
			if err != nil && !errors.Is(err, zenity.ErrCanceled) {
				return err
			}
			if err == nil {
				cfg.OutputFile = out
			}

			participant, err := zenity.Entry("Participant ID",
				zenity.Title("stimulus setup"))
			if err != nil && !errors.Is(err, zenity.ErrCanceled) {
				return err
			}
			if err == nil {
				cfg.Participant = participant
			}

			if err := cfg.SaveCache(); err != nil {
				return fmt.Errorf("save setup: %w", err)
			}
			fmt.Printf("Setup saved to %s\n", config.CacheFile)
			fmt.Printf("Run with: stimulus run %s\n", cfg.ScriptFile)
			return nil
		},
	}
}

// cancelable maps a canceled dialog to a clean exit error.
func cancelable(err error) error {
	if errors.Is(err, zenity.ErrCanceled) {
		return fmt.Errorf("setup canceled")
	}
	return err
}
