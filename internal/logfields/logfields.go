package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyStage      = "stage"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyNode       = "node"
	KeyCategory   = "category"
	KeyMember     = "member"
	KeyArchive    = "archive"
	KeyProject    = "project"
	KeyVersion    = "version"
	KeyDurationMS = "duration_ms"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func File(f string) slog.Attr          { return slog.String(KeyFile, f) }
func Node(id string) slog.Attr         { return slog.String(KeyNode, id) }
func Category(c string) slog.Attr      { return slog.String(KeyCategory, c) }
func Member(m string) slog.Attr        { return slog.String(KeyMember, m) }
func Archive(p string) slog.Attr       { return slog.String(KeyArchive, p) }
func Project(p string) slog.Attr       { return slog.String(KeyProject, p) }
func Version(v string) slog.Attr       { return slog.String(KeyVersion, v) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
