// Package ingest copies recordings from external source directories into the
// working tree without creating byte-identical duplicates.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"mediascribe/internal/collect"
	"mediascribe/internal/fileutil"
	"mediascribe/internal/logging"
	"mediascribe/internal/services"
	"mediascribe/internal/stage"
)

// maxVariants bounds the numbered-name search.
const maxVariants = 10000

// Source describes one copy stage.
type Source struct {
	Name       string
	Dir        string
	Recursive  bool
	Extensions []string
	DestDir    string
}

// Copier runs copy stages.
type Copier struct {
	logger *slog.Logger
}

// NewCopier constructs a Copier.
func NewCopier(logger *slog.Logger) *Copier {
	return &Copier{logger: logger}
}

// Outcome describes what happened to one source file.
type Outcome int

const (
	OutcomeCopied Outcome = iota + 1
	OutcomeDuplicate
)

// Run copies every matching file from src.Dir into src.DestDir. A missing
// source directory skips the stage. Per-file failures are logged and counted.
func (c *Copier) Run(ctx context.Context, src Source) (stage.Stats, error) {
	logger := logging.NewComponentLogger(c.logger, src.Name)
	if _, err := os.Stat(src.Dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info("source directory not found; skipping",
				logging.String("dir", src.Dir),
				logging.String(logging.FieldEventType, "source_missing"),
			)
			return stage.Skipped(fmt.Sprintf("source %s not found", src.Dir)), nil
		}
		return stage.Stats{}, services.Wrap(services.ErrConfiguration, src.Name, "stat source", "Source directory is not accessible", err)
	}
	if err := os.MkdirAll(src.DestDir, 0o755); err != nil {
		return stage.Stats{}, services.Wrap(services.ErrConfiguration, src.Name, "create destination", "Cannot create working directory", err)
	}

	files, err := collect.Files(src.Dir, collect.Options{Extensions: src.Extensions, Recursive: src.Recursive})
	if err != nil {
		return stage.Stats{}, services.Wrap(services.ErrConfiguration, src.Name, "scan source", "Cannot list source directory", err)
	}

	stats := stage.Stats{Found: len(files)}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		dest, outcome, err := CopyUnique(file, src.DestDir)
		base := filepath.Base(file)
		switch {
		case err != nil:
			stats.Failed++
			logging.WarnWithContext(logger, "copy failed; continuing with next file", "copy_failed",
				logging.String(logging.FieldArtifact, base),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check free space and permissions on the data directory"),
				logging.String(logging.FieldImpact, "file not ingested this run"),
			)
		case outcome == OutcomeDuplicate:
			stats.Skipped++
			logger.Debug("already copied",
				logging.String(logging.FieldArtifact, base),
				logging.String("existing", filepath.Base(dest)),
			)
		default:
			stats.Processed++
			stats.Outputs = append(stats.Outputs, dest)
			logger.Info("file copied",
				logging.String(logging.FieldArtifact, base),
				logging.String("dest", filepath.Base(dest)),
				logging.String(logging.FieldEventType, "file_copied"),
			)
		}
	}
	return stats, nil
}

// CopyUnique copies src into destDir unless a byte-identical file already
// exists under the same name or one of its numbered variants (name_1.ext,
// name_2.ext, ...). When the name is taken by different content, the first
// free numbered name is used. Nothing is overwritten.
func CopyUnique(src, destDir string) (string, Outcome, error) {
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	existing, err := variants(destDir, stem, ext)
	if err != nil {
		return "", 0, err
	}
	for _, candidate := range existing {
		same, err := fileutil.SameContent(src, candidate)
		if err != nil {
			return "", 0, fmt.Errorf("compare with %s: %w", filepath.Base(candidate), err)
		}
		if same {
			return candidate, OutcomeDuplicate, nil
		}
	}

	for i := 0; i < maxVariants; i++ {
		dest := filepath.Join(destDir, variantName(stem, ext, i))
		err := fileutil.CopyFileVerified(src, dest)
		if err == nil {
			return dest, OutcomeCopied, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", 0, err
		}
	}
	return "", 0, fmt.Errorf("no free name for %s after %d attempts", base, maxVariants)
}

func variantName(stem, ext string, n int) string {
	if n == 0 {
		return stem + ext
	}
	return stem + "_" + strconv.Itoa(n) + ext
}

// variants lists existing files in dir named stem+ext or stem_N+ext.
func variants(dir, stem, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(stem) + `(?:_[1-9][0-9]*)?` + regexp.QuoteMeta(ext) + `$`)
	var out []string
	for _, entry := range entries {
		if entry.IsDir() || !pattern.MatchString(entry.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, entry.Name()))
	}
	return out, nil
}
