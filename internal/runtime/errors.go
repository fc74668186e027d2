package runtime

import (
	"fmt"
	"io"

	"github.com/manav03panchal/remindly/internal/errors"
	"github.com/manav03panchal/remindly/internal/logging"
	"github.com/manav03panchal/remindly/internal/output"
)

// ExitCode maps an error to a process exit status: 1 for mistakes the
// user can fix, 2 for system failures.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Classify(err) == errors.CategorySystem {
		return 2
	}
	return 1
}

// ReportError prints err in the active output format. JSON errors go to
// stdout so scripts can parse them; everything else goes to stderr.
func (c *Context) ReportError(stderr io.Writer, err error) {
	if err == nil {
		return
	}
	if c.Debug {
		logging.DebugLog("command failed", "chain", errors.Chain(err))
	}

	if c.IsJSON() {
		c.JSONFormatter().PrintError(err.Error(), errors.GetSuggestion(err))
		return
	}

	msg := errors.FormatByCategory(err)
	if c.Formatter.Format == output.FormatPlain {
		fmt.Fprintln(stderr, "Error: "+msg)
		return
	}

	cli := output.NewCLIFormatter(&output.Formatter{
		Writer:    stderr,
		Format:    c.Formatter.Format,
		ColorMode: c.Formatter.ColorMode,
	})
	cli.Error(msg)
}

// ReportLoadWarning prints a non-fatal problem reading the reminder file.
// The command continues with empty reminders.
func (c *Context) ReportLoadWarning(stderr io.Writer, err error) {
	le, ok := errors.AsLoadError(err)
	if !ok || c.IsJSON() {
		return
	}
	cli := output.NewCLIFormatter(&output.Formatter{
		Writer:    stderr,
		Format:    c.Formatter.Format,
		ColorMode: c.Formatter.ColorMode,
	})
	cli.Warning(fmt.Sprintf("could not read %s, treating it as empty: %v", le.Path, le.Cause))
}
