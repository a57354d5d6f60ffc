package store

import (
	"errors"
	"fmt"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

// Kinds attached with ftag to every error leaving LoadProject, SaveProject and CreateProject.
const (
	KindProject      ftag.Kind = "project"
	KindChartParse   ftag.Kind = "chart_parse"
	KindMigration    ftag.Kind = "migration"
	KindFutureFormat ftag.Kind = "future_format"
	KindIO           ftag.Kind = "io"
)

var ErrDoctorIssuesFound = errors.New("doctor found issues")

// ProjectError covers a project directory that is missing files, has unreadable files or
// carries a malformed meta.json.
type ProjectError struct {
	Path   string
	Reason string
	Err    error
}

func (e ProjectError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("project %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("project %s: %s", e.Path, e.Reason)
}

func (e ProjectError) Unwrap() error { return e.Err }

// ChartParseError is a chart.json that is not valid JSON or does not match the schema.
type ChartParseError struct {
	Err error
}

func (e ChartParseError) Error() string { return "parse chart: " + e.Err.Error() }

func (e ChartParseError) Unwrap() error { return e.Err }

type MigrationError struct {
	From uint32
	To   uint32
	Err  error
}

func (e MigrationError) Error() string {
	return fmt.Sprintf("migrate chart from format %d to %d: %v", e.From, e.To, e.Err)
}

func (e MigrationError) Unwrap() error { return e.Err }

// FutureFormatError is a chart written by a newer editor.
type FutureFormatError struct {
	Format  uint32
	Current uint32
}

func (e FutureFormatError) Error() string {
	return fmt.Sprintf("chart format %d is newer than supported format %d", e.Format, e.Current)
}

type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e IOError) Error() string { return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err) }

func (e IOError) Unwrap() error { return e.Err }

// tag wraps err with its ftag kind and a user facing message.
func tag(err error) error {
	if err == nil {
		return nil
	}
	var (
		projErr   ProjectError
		parseErr  ChartParseError
		migErr    MigrationError
		futureErr FutureFormatError
		ioErr     IOError
	)
	switch {
	case errors.As(err, &futureErr):
		return fault.Wrap(err, ftag.With(KindFutureFormat), fmsg.WithDesc("unsupported chart format",
			fmt.Sprintf("This chart was saved by a newer version (format %d). Please upgrade.", futureErr.Format)))
	case errors.As(err, &migErr):
		return fault.Wrap(err, ftag.With(KindMigration), fmsg.WithDesc("chart migration failed",
			fmt.Sprintf("Could not upgrade chart from format %d to %d.", migErr.From, migErr.To)))
	case errors.As(err, &parseErr):
		return fault.Wrap(err, ftag.With(KindChartParse), fmsg.WithDesc("invalid chart", "chart.json is invalid: "+parseErr.Err.Error()))
	case errors.As(err, &projErr):
		return fault.Wrap(err, ftag.With(KindProject), fmsg.WithDesc("invalid project", "Invalid project: "+projErr.Reason))
	case errors.As(err, &ioErr):
		return fault.Wrap(err, ftag.With(KindIO), fmsg.WithDesc("file system error",
			fmt.Sprintf("Could not %s %s.", ioErr.Op, ioErr.Path)))
	default:
		return fault.Wrap(err, ftag.With(ftag.Internal))
	}
}

// Describe returns the user facing message for err. Errors without one fall back to
// err.Error().
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if issue := fmsg.GetIssue(err); issue != "" {
		return issue
	}
	return err.Error()
}
