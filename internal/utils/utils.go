package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	log "github.com/sirupsen/logrus"
)

var Log = logrus.New()

func SetLogLevel(level string) {
	// We are not using logrus' trace and panic levels
	switch strings.ToLower(level) {
	case "debug":
		Log.SetLevel(log.DebugLevel)
	case "info":
		Log.SetLevel(log.InfoLevel)
	case "warning", "warn":
		Log.SetLevel(log.WarnLevel)
	case "error":
		Log.SetLevel(log.ErrorLevel)
	case "fatal":
		Log.SetLevel(log.FatalLevel)
	default:
		log.Fatal("Bad error level string")
	}
}

// jsonlHook mirrors every log entry as a JSON line into an actions file, one
// file per run directory, so a run leaves a machine-readable audit trail next
// to its artifacts.
type jsonlHook struct {
	file      *os.File
	formatter logrus.Formatter
}

func (h *jsonlHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *jsonlHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.file.Write(line)
	return err
}

// AttachActionLog appends all subsequent log output, JSON-formatted, to
// <dir>/actions.jsonl. The returned closer flushes the file.
func AttachActionLog(dir string) (func() error, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, "actions.jsonl"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	Log.AddHook(&jsonlHook{file: f, formatter: &logrus.JSONFormatter{}})
	return f.Close, nil
}

// LooksLikeUUID reports whether s has the 8-4-4-4-12 shape of a
// cross-reference identifier.
func LooksLikeUUID(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 36 {
		return false
	}
	parts := strings.Split(s, "-")
	if len(parts) != 5 {
		return false
	}
	want := []int{8, 4, 4, 4, 12}
	for i, p := range parts {
		if len(p) != want[i] {
			return false
		}
	}
	return true
}

// NormalizeBaseURL trims trailing slashes so path joins stay predictable.
func NormalizeBaseURL(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}
