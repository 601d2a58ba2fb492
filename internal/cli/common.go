package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"sidenote-sync-server/internal/domain"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	labelColor   = color.New(color.FgCyan)
)

// staticSettings serves settings assembled from flags and the environment.
type staticSettings domain.SyncSettings

func (s staticSettings) Get(ctx context.Context) (*domain.SyncSettings, error) {
	settings := domain.SyncSettings(s)
	return &settings, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSuccess(w io.Writer, format string, args ...interface{}) {
	_, _ = successColor.Fprint(w, "ok: ")
	_, _ = fmt.Fprintf(w, format, args...)
}

func printLabel(w io.Writer, label, value string) {
	_, _ = labelColor.Fprint(w, label+"=")
	_, _ = fmt.Fprint(w, value)
}
