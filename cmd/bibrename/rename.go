// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bibrename/internal/bib"
	"github.com/pdiddy/bibrename/internal/cleanup"
	"github.com/pdiddy/bibrename/internal/logging"
	"github.com/pdiddy/bibrename/internal/pattern"
	"github.com/pdiddy/bibrename/internal/relocate"
)

func newRenameCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename [keys...]",
		Short: "Rename attached files after the file name pattern",
		Long: `Rename moves every file attached to the given entries (all entries when
no key is given) to the name produced by the pattern, keeping the file in
its current directory and its extension, and rewrites the attachment links.

Existing files are never overwritten. Links that cannot be resolved, and
absolute links when --only-relative is set, are left alone.

Use --file with exactly one key to rename a single attachment.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRename(cmd, args)
		},
	}

	f := cmd.Flags()
	f.String("pattern", "", "file name pattern, e.g. \"[auth:lower][year]\"")
	f.StringSlice("dir", nil, "attachment directories searched in order")
	f.Bool("only-relative", false, "leave absolute links untouched")
	f.Bool("use-library-dir", true, "search the library file's directory last")
	f.String("file", "", "rename only the attachment with this link (requires one key)")
	f.Bool("dry-run", false, "show the computed target names without moving files")

	a.bindFlags(f, map[string]string{
		"pattern":             "pattern",
		"directories":         "dir",
		"only_relative_paths": "only-relative",
		"use_library_dir":     "use-library-dir",
	})
	return cmd
}

func (a *app) runRename(cmd *cobra.Command, args []string) error {
	fileLink, _ := cmd.Flags().GetString("file")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if fileLink != "" && len(args) != 1 {
		return fmt.Errorf("--file requires exactly one entry key, got %d", len(args))
	}

	s, err := a.session(cmd)
	if err != nil {
		return err
	}
	lib, release, err := s.lockLibrary()
	if err != nil {
		return err
	}
	defer release()

	entries, err := selectEntries(lib, args)
	if err != nil {
		return err
	}

	scope := cleanup.WholeEntry()
	if fileLink != "" {
		scope, err = attachmentScope(entries[0], fileLink)
		if err != nil {
			return err
		}
	}

	engine := cleanup.New(cleanup.Options{
		OnlyRelativePaths: s.cfg.Rename.OnlyRelativePaths,
		Pattern:           s.cfg.Rename.Pattern,
		Directories:       lib.Directories(s.cfg.Rename),
	}, pattern.Bracket{}, relocate.New(logging.Component(s.logger, "relocate")), logging.Component(s.logger, "cleanup"))

	out := cmd.OutOrStdout()
	if dryRun {
		fmt.Fprintln(out, renderTable(out, []string{"Entry", "Link", "Target name"}, previewRows(engine, entries, scope), nil))
		return nil
	}

	batch, runErr := engine.CleanupAll(cmd.Context(), entries, scope)
	if runErr != nil {
		// Entries finished before cancellation still changed files on disk,
		// so their links are saved and journaled below.
		s.logger.Warn("rename interrupted", slog.String("error", runErr.Error()))
	}

	var batchID string
	if len(batch.Changes) > 0 {
		if err := lib.Save(); err != nil {
			return fmt.Errorf("saving library: %w", err)
		}
		batchID, err = s.record(cmd, batch)
		if err != nil {
			return err
		}
	}

	fmt.Fprintln(out, renderTable(out, []string{"Entry", "Link", "Outcome", "New link"}, outcomeRows(batch), nil))
	fmt.Fprintf(out, "\nRename summary: %d renamed, %d skipped, %d failed (total: %d)\n",
		batch.Renamed, batch.Skipped, batch.Failed, batch.Total())
	if batchID != "" {
		fmt.Fprintf(out, "Recorded as batch %s\n", batchID)
	}

	if runErr != nil {
		return runErr
	}
	if batch.HasFailures() {
		return fmt.Errorf("%d rename(s) failed", engine.UnsuccessfulRenames())
	}
	return nil
}

// record journals the batch changes. It runs even after an interrupt since
// the library has already been saved.
func (s *session) record(cmd *cobra.Command, batch cleanup.BatchResult) (string, error) {
	store, err := s.openHistory()
	if err != nil {
		return "", err
	}
	defer store.Close()

	id, err := store.Record(context.WithoutCancel(cmd.Context()), s.cfg.Rename.Pattern, batch.Changes)
	if err != nil {
		return "", fmt.Errorf("recording changes: %w", err)
	}
	return id, nil
}

func selectEntries(lib *bib.Library, keys []string) ([]*bib.Entry, error) {
	if len(keys) == 0 {
		return lib.Entries, nil
	}
	entries := make([]*bib.Entry, 0, len(keys))
	for _, key := range keys {
		entry, err := lib.Entry(key)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// attachmentScope selects the first attachment of entry whose link text
// equals link.
func attachmentScope(entry *bib.Entry, link string) (cleanup.Scope, error) {
	for _, f := range entry.Files() {
		if f.Link == link {
			return cleanup.SingleAttachment(f), nil
		}
	}
	return cleanup.Scope{}, fmt.Errorf("entry %s has no attachment %q", entry.Key, link)
}

func previewRows(engine *cleanup.Engine, entries []*bib.Entry, scope cleanup.Scope) [][]string {
	var rows [][]string
	selected, single := scope.Attachment()
	for _, entry := range entries {
		for _, f := range entry.Files() {
			if single && f != selected {
				continue
			}
			rows = append(rows, []string{entry.Key, f.Link, engine.TargetFileName(entry, f)})
		}
	}
	return rows
}

func outcomeRows(batch cleanup.BatchResult) [][]string {
	var rows [][]string
	for _, er := range batch.Entries {
		for _, o := range er.Result.Outcomes {
			status := string(o.Kind)
			if o.Reason != "" {
				status += ": " + o.Reason
			}
			newLink := ""
			if o.Kind == cleanup.OutcomeRenamed {
				newLink = o.Link.Link
			}
			rows = append(rows, []string{er.Key, o.Original.Link, status, newLink})
		}
	}
	return rows
}
