package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"constellations/internal/share"
	"constellations/internal/store"
	"constellations/internal/trail"
)

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Create and open share links",
}

var shareLinkCmd = &cobra.Command{
	Use:   "link ID",
	Short: "Print the share link of a constellation",
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
		link, err := share.Link(cfg.ShareBaseURL, t)
		if err != nil {
			return err
		}
		if flagJSON {
			tok, _, _ := share.FromURL(link)
			return printJSON(cmd.OutOrStdout(), map[string]string{"link": link, "token": tok})
		}
		fmt.Fprintln(cmd.OutOrStdout(), link)
		return nil
	},
}

var flagKeep bool

var shareOpenCmd = &cobra.Command{
	Use:   "open TOKEN|URL",
	Short: "Decode a shared constellation",
	Long: `Decode a share token or link and print the constellation it carries.
With --keep the constellation is added to your saved ones.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := share.Decode(share.TokenOf(args[0]))
		if err != nil {
			return fmt.Errorf("%w: %w", errUsage, err)
		}
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()
		if flagKeep {
			kept, err := keep(cmd.Context(), s.repo, t)
			if err != nil {
				return err
			}
			t = kept
		}
		return printTrail(cmd.OutOrStdout(), resolve(s.catalog, t))
	},
}

// keep saves a copy of a shared trail unless an identical one is already
// stored, and returns the stored trail.
func keep(ctx context.Context, repo *store.Repository, shared trail.Trail) (trail.Trail, error) {
	for _, t := range repo.LoadAll(ctx) {
		if t.SameShape(shared) {
			return t, nil
		}
	}
	kept := shared.Copy(trail.NewID(), time.Now())
	if err := repo.Add(ctx, kept); err != nil {
		return trail.Trail{}, fmt.Errorf("keep %s: %w", shared.Name, err)
	}
	return kept, nil
}

func init() {
	shareOpenCmd.Flags().BoolVar(&flagKeep, "keep", false, "save the constellation")
	shareCmd.AddCommand(shareLinkCmd)
	shareCmd.AddCommand(shareOpenCmd)
}
