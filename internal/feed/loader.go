package feed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"kavyashar.org/intake/internal/logging"
)

// TableLoader produces the parsed rows of one table.
type TableLoader interface {
	Load(ctx context.Context, table TableID) (*TableResult, error)
}

// Refresher is implemented by loaders that hold a whole-feed download
// between table loads. Refresh drops it so the next Load fetches again.
type Refresher interface {
	Refresh()
}

// Loader reads each table from a Source and parses it.
type Loader struct {
	source Source
	logger *slog.Logger
}

func NewLoader(source Source) *Loader {
	return &Loader{
		source: source,
		logger: slog.Default().With(slog.String("component", "feed_loader")),
	}
}

func (l *Loader) Load(ctx context.Context, table TableID) (*TableResult, error) {
	rc, err := l.source.Open(ctx, table)
	if err != nil {
		return nil, unavailable(table, err)
	}
	defer logging.SafeCloseWithLogging(rc, l.logger, string(table))

	data, err := io.ReadAll(io.LimitReader(rc, maxTableSize+1))
	if err != nil {
		return nil, unavailable(table, fmt.Errorf("error reading table: %w", err))
	}
	if len(data) > maxTableSize {
		return nil, unavailable(table, fmt.Errorf("table exceeds size limit of %d bytes", maxTableSize))
	}

	res, err := Parse(table, string(data))
	if err != nil {
		return nil, err
	}
	res.Checksum = checksum(data)
	logTableStats(l.logger, table, res.Stats)
	return res, nil
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func logTableStats(logger *slog.Logger, table TableID, stats Stats) {
	attrs := []slog.Attr{
		slog.String("table", string(table)),
		slog.Int("rows", stats.Rows),
		slog.Int("dropped", stats.Dropped),
	}
	if stats.Dropped > 0 {
		logger.LogAttrs(context.Background(), slog.LevelWarn, "feed_rows_dropped", attrs...)
		return
	}
	logging.LogOperation(logger, "feed_table_parsed", attrs...)
}

// NewTableLoader builds the loader for a configured source kind:
// "http" (base URL), "dir" (directory), "zip" (archive path) or "bundle"
// (a full GTFS zip at a URL or path, parsed as a whole).
func NewTableLoader(kind, location, authKey, authValue string) (TableLoader, error) {
	switch strings.ToLower(kind) {
	case "http":
		return NewLoader(NewHTTPSource(location, authKey, authValue)), nil
	case "dir", "":
		return NewLoader(DirSource{Dir: location}), nil
	case "zip":
		return NewLoader(ZipSource{Path: location}), nil
	case "bundle":
		return NewBundleLoader(location, authKey, authValue), nil
	default:
		return nil, fmt.Errorf("unknown feed source kind %q", kind)
	}
}
