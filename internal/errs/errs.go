package errs

import (
	"fmt"
	"strings"

	cr "github.com/cockroachdb/errors"
)

var (
	ErrNotFound     = cr.New("not found")
	ErrInvalidInput = cr.New("invalid input")
)

func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Wrap(err, msg)
}

func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return cr.Wrapf(err, format, args...)
}

func New(msg string) error {
	return cr.New(msg)
}

func Newf(format string, args ...any) error {
	return cr.Newf(format, args...)
}

func Mark(err error, markErr error) error {
	if err == nil {
		return markErr
	}
	return cr.Mark(err, markErr)
}

func Is(err, target error) bool {
	return cr.Is(err, target)
}

// Invalid returns an ErrInvalidInput-marked error with the given message.
func Invalid(format string, args ...any) error {
	return cr.Mark(cr.Newf(format, args...), ErrInvalidInput)
}

// NotFound returns an ErrNotFound-marked error naming the missing entity.
func NotFound(entity string, id int64) error {
	return cr.Mark(cr.Newf("%s %d not found", entity, id), ErrNotFound)
}

func ExtractStackLines(err error, maxLines int) []string {
	if err == nil {
		return nil
	}
	s := fmt.Sprintf("%+v", err)
	lines := strings.Split(s, "\n")
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}
