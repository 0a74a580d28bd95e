// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cleanup renames the files attached to bibliographic entries
// according to a file name pattern and rewrites the entries' attachment
// lists to match.
//
// For each attachment the engine resolves the stored link against the
// library directories, derives the target name from the entry through the
// pattern formatter, refuses to overwrite anything that is not a case-only
// variant of the source, moves the file, and rewrites the link relative to
// the first existing library directory. Per-file problems never abort the
// run; they show up as skipped or failed outcomes and in the
// unsuccessful-rename counter.
//
// The engine is synchronous and holds no locks. Callers that run it
// concurrently against the same directories must serialize externally.
package cleanup

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/pdiddy/bibrename/internal/bib"
	"github.com/pdiddy/bibrename/internal/logging"
	"github.com/pdiddy/bibrename/internal/pattern"
	"github.com/pdiddy/bibrename/internal/relocate"
	"github.com/pdiddy/bibrename/internal/resolve"
	"github.com/pdiddy/bibrename/pkg/types"
)

// Relocator moves a file on disk.
type Relocator interface {
	Relocate(src, dst string) error
}

// Options are the plain configuration values the engine consumes.
type Options struct {
	// OnlyRelativePaths leaves attachments with absolute links untouched.
	OnlyRelativePaths bool

	// Pattern is passed to the formatter. Empty selects types.DefaultPattern.
	Pattern string

	// Directories are the library directories, in search order.
	Directories []string
}

// Engine renames attachments. It counts failed renames over its lifetime.
type Engine struct {
	opts      Options
	formatter pattern.Formatter
	relocator Relocator
	logger    *slog.Logger

	unsuccessful int
}

// New returns an engine. A nil formatter selects pattern.Bracket, a nil
// relocator selects relocate.Mover, and a nil logger discards output.
func New(opts Options, formatter pattern.Formatter, relocator Relocator, logger *slog.Logger) *Engine {
	if opts.Pattern == "" {
		opts.Pattern = types.DefaultPattern
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if formatter == nil {
		formatter = pattern.Bracket{}
	}
	if relocator == nil {
		relocator = relocate.New(logger)
	}
	opts.Directories = absDirs(opts.Directories)
	return &Engine{
		opts:      opts,
		formatter: formatter,
		relocator: relocator,
		logger:    logger,
	}
}

// UnsuccessfulRenames returns the number of rename attempts that failed
// since the engine was created.
func (e *Engine) UnsuccessfulRenames() int {
	return e.unsuccessful
}

// TargetFileName returns the file name the engine would give link.
func (e *Engine) TargetFileName(entry *bib.Entry, link types.AttachmentLink) string {
	return TargetFileName(e.formatter, entry, e.opts.Pattern, link)
}

// Cleanup processes the attachments of entry selected by scope, moves the
// files, and updates the entry's attachment list. The list is written
// back, and Result.Change set, only when at least one file was renamed.
func (e *Engine) Cleanup(entry *bib.Entry, scope Scope) Result {
	files := entry.Files()
	out := slices.Clone(files)

	var queue []int
	if link, single := scope.Attachment(); single {
		idx := slices.Index(files, link)
		if idx < 0 {
			e.logger.Debug("attachment not found on entry",
				slog.String("entry", entry.Key), slog.String("link", link.Link))
			return Result{Files: out, Outcomes: []Outcome{skipped(link, ReasonNotAttached)}}
		}
		queue = []int{idx}
	} else {
		queue = make([]int, len(files))
		for i := range files {
			queue[i] = i
		}
	}

	result := Result{Outcomes: make([]Outcome, 0, len(queue))}
	renamed := 0
	for _, i := range queue {
		outcome := e.process(entry, files[i])
		switch outcome.Kind {
		case OutcomeRenamed:
			out[i] = outcome.Link
			renamed++
		case OutcomeFailed:
			result.Failed++
			e.unsuccessful++
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}
	result.Files = out

	if renamed > 0 {
		result.Change, result.HasChange = RecordChange(entry, files, out)
	}
	return result
}

func (e *Engine) process(entry *bib.Entry, link types.AttachmentLink) Outcome {
	log := e.logger.With(slog.String("entry", entry.Key), slog.String("link", link.Link))

	if e.opts.OnlyRelativePaths && filepath.IsAbs(link.Link) {
		log.Debug("skipping absolute link")
		return skipped(link, ReasonAbsolutePath)
	}

	source, ok := resolve.Expand(link.Link, e.opts.Directories)
	if !ok || !hasParent(source) {
		log.Debug("cannot resolve link")
		return skipped(link, ReasonUnresolvable)
	}

	base, name := targetName(e.formatter, entry, e.opts.Pattern, link)
	if base == "" {
		log.Warn("pattern produced an empty file name", slog.String("pattern", e.opts.Pattern))
		return skipped(link, ReasonEmptyName)
	}
	target := filepath.Join(filepath.Dir(source), name)

	if reason, ok := checkTarget(source, target); !ok {
		log.Debug("not renaming", slog.String("target", target), slog.String("reason", reason))
		o := skipped(link, reason)
		o.Target = target
		return o
	}

	if err := e.relocator.Relocate(source, target); err != nil {
		log.Warn("rename failed", slog.String("target", target), slog.Any("error", err))
		return Outcome{Kind: OutcomeFailed, Original: link, Link: link, Reason: err.Error(), Target: target}
	}

	baseDir, hasBase := resolve.FirstExistingDir(e.opts.Directories)
	newLink := RewriteLink(link, target, baseDir, hasBase)
	log.Info("renamed attachment", slog.String("target", target), slog.String("new_link", newLink.Link))
	return Outcome{Kind: OutcomeRenamed, Original: link, Link: newLink, Target: target}
}

// absDirs copies dirs, resolving relative entries against the working
// directory so rewritten links can be made relative to them.
func absDirs(dirs []string) []string {
	out := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		if dir != "" && !filepath.IsAbs(dir) {
			if abs, err := filepath.Abs(dir); err == nil {
				dir = abs
			}
		}
		out = append(out, dir)
	}
	return out
}

// hasParent reports whether path names something inside a directory.
func hasParent(path string) bool {
	parent := filepath.Dir(path)
	if parent == path {
		return false
	}
	return filepath.IsAbs(path) || parent != "."
}

// EntryResult pairs an entry key with its result.
type EntryResult struct {
	Key    string `json:"key" yaml:"key"`
	Result Result `json:"result" yaml:"result"`
}

// BatchResult holds the outcome of running the engine over several entries.
type BatchResult struct {
	Renamed int
	Skipped int
	Failed  int
	Changes []types.FieldChange
	Entries []EntryResult
}

// Total returns the number of attachments processed.
func (r BatchResult) Total() int {
	return r.Renamed + r.Skipped + r.Failed
}

// HasFailures reports whether any rename failed on disk.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// CleanupAll runs Cleanup over entries one at a time. Cancellation is
// checked between entries only; an entry that has started is finished.
func (e *Engine) CleanupAll(ctx context.Context, entries []*bib.Entry, scope Scope) (BatchResult, error) {
	var batch BatchResult
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return batch, ctx.Err()
		default:
		}

		res := e.Cleanup(entry, scope)
		batch.Renamed += res.Renamed()
		batch.Skipped += res.Skipped()
		batch.Failed += res.Failed
		if res.HasChange {
			batch.Changes = append(batch.Changes, res.Change)
		}
		batch.Entries = append(batch.Entries, EntryResult{Key: entry.Key, Result: res})
	}
	e.logger.Info("rename batch finished",
		slog.Int("renamed", batch.Renamed),
		slog.Int("skipped", batch.Skipped),
		slog.Int("failed", batch.Failed))
	return batch, nil
}
