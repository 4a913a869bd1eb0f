package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"constellations/internal/logging"
	"constellations/internal/render"
)

var flagOut string

var exportCmd = &cobra.Command{
	Use:   "export ID",
	Short: "Render a constellation as a PNG image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()
		t, err := s.find(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		a, err := render.NewExporter().Export(t, s.catalog, cfg.User)
		if errors.Is(err, render.ErrNothingToExport) {
			return fmt.Errorf("%w: %w", errUsage, err)
		}
		if err != nil {
			return err
		}
		dir := flagOut
		if dir == "" {
			dir = cfg.ExportDir
		}
		path, err := a.Save(dir)
		if err != nil {
			return fmt.Errorf("write image: %w", err)
		}
		logging.L().Info("exported", slog.String("trail", t.ID), slog.String("path", path))
		if flagJSON {
			return printJSON(cmd.OutOrStdout(), map[string]string{"path": path})
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&flagOut, "out", "", "output directory (default: export_dir from config)")
}
