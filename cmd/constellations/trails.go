package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"constellations/internal/geom"
	"constellations/internal/trail"
)

var flagWKT bool

var trailsCmd = &cobra.Command{
	Use:   "trails",
	Short: "List and manage saved constellations",
	Long: `Manage saved constellations.

A constellation may be named by its full id or by any unique id prefix.`,
}

var trailsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved constellations, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()
		ts := s.repo.LoadAll(cmd.Context())
		sort.SliceStable(ts, func(i, j int) bool { return ts[i].CreatedAt.After(ts[j].CreatedAt) })
		return printTrails(cmd.OutOrStdout(), ts)
	},
}

var trailsShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a constellation and its stars",
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
		v := resolve(s.catalog, t)
		if flagWKT {
			fmt.Fprintln(cmd.OutOrStdout(), geom.FormatLineString(v.Points))
			return nil
		}
		return printTrail(cmd.OutOrStdout(), v)
	},
}

var trailsRenameCmd = &cobra.Command{
	Use:   "rename ID NAME",
	Short: "Rename a constellation",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editTrail(cmd, args[0], func(t trail.Trail) trail.Edit {
			return trail.Edit{Name: strings.Join(args[1:], " "), Description: t.Description}
		})
	},
}

var trailsDescribeCmd = &cobra.Command{
	Use:   "describe ID TEXT",
	Short: "Set the description of a constellation (empty TEXT clears it)",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editTrail(cmd, args[0], func(t trail.Trail) trail.Edit {
			return trail.Edit{Name: t.Name, Description: strings.Join(args[1:], " ")}
		})
	},
}

func editTrail(cmd *cobra.Command, ref string, edit func(trail.Trail) trail.Edit) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()
	t, err := s.find(cmd.Context(), ref)
	if err != nil {
		return err
	}
	updated, err := s.repo.Update(cmd.Context(), t.ID, edit(t))
	switch {
	case errors.Is(err, trail.ErrEmptyName), errors.Is(err, trail.ErrNameTooLong),
		errors.Is(err, trail.ErrDescriptionTooLong):
		return fmt.Errorf("%w: %w", errUsage, err)
	case err != nil:
		return err
	}
	return printTrail(cmd.OutOrStdout(), resolve(s.catalog, updated))
}

var trailsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a constellation",
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
		if err := s.repo.Delete(cmd.Context(), t.ID); err != nil {
			return fmt.Errorf("delete %s: %w", t.ID, err)
		}
		if flagJSON {
			return printJSON(cmd.OutOrStdout(), map[string]string{"deleted": t.ID})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s (%s)\n", t.Name, t.ID)
		return nil
	},
}

var trailsFindCmd = &cobra.Command{
	Use:   "find QUERY",
	Short: "Fuzzy-search constellations by name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()
		return printTrails(cmd.OutOrStdout(), s.repo.Find(cmd.Context(), strings.Join(args, " ")))
	},
}

func init() {
	trailsCmd.AddCommand(trailsListCmd)
	trailsShowCmd.Flags().BoolVar(&flagWKT, "wkt", false, "print the resolved stars as a WKT LINESTRING")
	trailsCmd.AddCommand(trailsShowCmd)
	trailsCmd.AddCommand(trailsRenameCmd)
	trailsCmd.AddCommand(trailsDescribeCmd)
	trailsCmd.AddCommand(trailsDeleteCmd)
	trailsCmd.AddCommand(trailsFindCmd)
}
