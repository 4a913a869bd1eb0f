package main

import (
	"errors"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"constellations/internal/locate"
	"constellations/internal/logging"
	"constellations/internal/render"
	"constellations/internal/share"
	"constellations/internal/trail"
	"constellations/internal/tui"
)

var flagShare string

var weaveCmd = &cobra.Command{
	Use:   "weave [TOKEN|URL]",
	Short: "Open the map and weave constellations",
	Long: `Open the interactive map. Click stars (or cycle with n and press enter)
to weave them into a constellation, then press s to name and save it.

A share token or link, given as argument or with --share, opens that
constellation for viewing. Press k to keep it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWeave,
}

func init() {
	weaveCmd.Flags().StringVar(&flagShare, "share", "", "open a shared constellation (token or link)")
}

func runWeave(cmd *cobra.Command, args []string) error {
	ref := flagShare
	if len(args) == 1 {
		ref = args[0]
	}

	f, err := logging.ToFile(cfg.LogPath(), logging.ParseLevel(cfg.LogLevel))
	if err != nil {
		// the map stays usable without a log file
		logging.SetLogger(nil)
	} else {
		defer f.Close()
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	d := tui.Deps{
		Catalog:      s.catalog,
		Repo:         s.repo,
		Weaver:       trail.NewWeaver(),
		Exporter:     render.NewExporter(),
		User:         cfg.User,
		ExportDir:    cfg.ExportDir,
		ShareBaseURL: cfg.ShareBaseURL,
	}
	if ref != "" {
		t, err := share.Decode(share.TokenOf(ref))
		if err != nil {
			logging.L().Warn("open share", slog.Any("err", err))
			d.Notice = "that share link could not be read"
		} else {
			d.Shared = &t
		}
	}
	loc, err := locate.New(cfg.Locate)
	if err != nil {
		logging.L().Warn("locate config", slog.Any("err", err))
	}
	d.Locator = loc

	m := tui.New(d)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	if fm, ok := final.(tui.Model); ok {
		fm.Close()
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run map: %w", err)
	}
	return nil
}
