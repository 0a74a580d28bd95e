// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pdiddy/bibrename/internal/history"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [batch-id]",
		Short: "List recorded rename batches or show one batch's changes",
		Long: `History lists the rename runs recorded in the change journal, newest
first. Given a batch ID it prints the field changes of that batch.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHistory(cmd, args)
		},
	}
	cmd.Flags().Int("limit", 20, "maximum number of batches to list (0 for all)")
	return cmd
}

func (a *app) runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := a.session(cmd)
	if err != nil {
		return err
	}
	store, err := s.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if len(args) == 1 {
		changes, err := store.Changes(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(changes) == 0 {
			return fmt.Errorf("%w: %s", history.ErrBatchNotFound, args[0])
		}
		rows := make([][]string, 0, len(changes))
		for _, c := range changes {
			rows = append(rows, []string{c.EntryKey, c.Field, c.OldValue, c.NewValue})
		}
		fmt.Fprintln(out, renderTable(out, []string{"Entry", "Field", "Old", "New"}, rows, nil))
		return nil
	}

	batches, err := store.List(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(batches) == 0 {
		fmt.Fprintln(out, "No rename batches recorded.")
		return nil
	}

	rows := make([][]string, 0, len(batches))
	for _, b := range batches {
		status := "applied"
		if b.Undone {
			status = "undone " + humanize.Time(b.UndoneAt)
		}
		rows = append(rows, []string{
			b.ID,
			humanize.Time(b.CreatedAt),
			b.Pattern,
			strconv.Itoa(b.Changes),
			status,
		})
	}
	fmt.Fprintln(out, renderTable(out,
		[]string{"Batch", "When", "Pattern", "Changes", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft}))
	return nil
}
