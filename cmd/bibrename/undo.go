// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUndoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "undo [batch-id]",
		Short: "Restore the attachment links of a rename batch",
		Long: `Undo restores the attachment field of every entry changed by the given
batch, or by the most recent batch not yet undone.

Only the link text is restored. Renamed files stay where they are, so
the restored links may point at files that no longer exist under the old
name.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runUndo(cmd, args)
		},
	}
}

func (a *app) runUndo(cmd *cobra.Command, args []string) error {
	s, err := a.session(cmd)
	if err != nil {
		return err
	}
	lib, release, err := s.lockLibrary()
	if err != nil {
		return err
	}
	defer release()

	store, err := s.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	id := ""
	if len(args) == 1 {
		id = args[0]
	} else {
		latest, err := store.Latest(cmd.Context())
		if err != nil {
			return err
		}
		id = latest.ID
	}

	applied, err := store.Undo(cmd.Context(), lib, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Restored %d field(s) from batch %s\n", len(applied), id)
	fmt.Fprintln(cmd.ErrOrStderr(), "warning: files were not moved back; restored links may be stale")
	return nil
}
