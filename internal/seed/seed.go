package seed

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	catalogdomain "github.com/smallbiznis/dinepos/internal/catalog/domain"
	"github.com/smallbiznis/dinepos/internal/catalog/importer"
	"go.uber.org/zap"
)

var ErrMenuSourceMissing = errors.New("menu_source_missing")

// MenuOptions locates the first-run menu file. When Required is false a
// missing file only logs a warning and the menu stays empty.
type MenuOptions struct {
	Source   string
	Required bool
}

// EnsureMenu imports the menu source into an empty catalog. A populated
// catalog is never touched, so restarts do not duplicate items.
func EnsureMenu(ctx context.Context, catalog catalogdomain.Service, opts MenuOptions, log *zap.Logger) (*catalogdomain.ImportResult, error) {
	if catalog == nil {
		return nil, errors.New("seed catalog service is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("seed")

	source := strings.TrimSpace(opts.Source)
	if source == "" {
		return missingSource(opts, log, source)
	}

	src, err := importer.LoadFile(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return missingSource(opts, log, source)
		}
		return nil, fmt.Errorf("load menu source %s: %w", source, err)
	}

	result, err := catalog.BulkImport(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("import menu source %s: %w", source, err)
	}
	return result, nil
}

func missingSource(opts MenuOptions, log *zap.Logger, source string) (*catalogdomain.ImportResult, error) {
	if opts.Required {
		return nil, fmt.Errorf("%w: %q", ErrMenuSourceMissing, source)
	}
	log.Warn("menu source not found, starting with an empty menu", zap.String("source", source))
	return nil, nil
}
