package changelog

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/danielolaszy/changelog/internal/config"
	"github.com/danielolaszy/changelog/internal/logging"
	"github.com/danielolaszy/changelog/pkg/models"
)

const (
	consoleBegin = "---------- Change log ----------"
	consoleEnd   = "---------- End change log ----------"
)

func (g *Generator) write(ctx context.Context, text string) (*models.Release, error) {
	switch g.opts.Output.Type {
	case config.OutputConsole, "":
		return nil, WriteConsole(g.console, text)

	case config.OutputFile:
		if g.opts.Output.File == "" {
			return nil, fmt.Errorf("output file must be set when output type is %s", config.OutputFile)
		}
		if err := WriteFile(g.opts.Output.File, text); err != nil {
			return nil, err
		}
		logging.Info("wrote changelog", "path", g.opts.Output.File)
		return nil, nil

	case config.OutputGitHub:
		if g.releases == nil {
			return nil, fmt.Errorf("no release manager configured for output type %s", config.OutputGitHub)
		}
		return g.releases.CreateRelease(ctx, g.opts.Repo.Revision, text)

	default:
		return nil, fmt.Errorf("unsupported output type: %s", g.opts.Output.Type)
	}
}

// WriteConsole writes text between begin and end markers.
func WriteConsole(w io.Writer, text string) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n%s\n", consoleBegin, text, consoleEnd)
	return err
}

// WriteFile writes text to path, creating missing parent directories.
func WriteFile(path, text string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write changelog to %s: %w", path, err)
	}
	return nil
}
