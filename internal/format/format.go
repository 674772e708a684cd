// Package format renders decoded server time for the terminal.
//
// Without a custom specifier the output follows the C asctime layout
// ("Www Mmm dd hh:mm:ss yyyy", no trailing newline). A custom specifier
// uses strftime directives; %s (Unix seconds) is available in addition
// to the usual set.
package format

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/strftime"
)

// AsctimeLayout is the Go layout equivalent of C asctime
const AsctimeLayout = "Mon Jan _2 15:04:05 2006"

// Labels printed before the time unless pure output is requested
const (
	AsctimeLabel = "Time (asctime): "
	CustomLabel  = "Time (custom): "
)

// ErrInvalidSpecifier reports a custom format that could not be compiled
var ErrInvalidSpecifier = errors.New("invalid time format")

// Renderer turns a time into the printed line
type Renderer struct {
	// Format is a strftime specifier; empty selects asctime
	Format string

	// Pure drops the descriptive label
	Pure bool

	// Location defaults to time.Local
	Location *time.Location
}

// Render formats t. On an invalid specifier nothing is returned but the error.
func (r Renderer) Render(t time.Time) (string, error) {
	loc := r.Location
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)

	if r.Format == "" {
		return r.label(AsctimeLabel) + t.Format(AsctimeLayout), nil
	}

	text, err := Strftime(r.Format, t)
	if err != nil {
		return "", err
	}
	return r.label(CustomLabel) + text, nil
}

func (r Renderer) label(l string) string {
	if r.Pure {
		return ""
	}
	return l
}

// Strftime renders t with a strftime specifier
func Strftime(pattern string, t time.Time) (string, error) {
	f, err := strftime.New(pattern, strftime.WithUnixSeconds('s'))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSpecifier, err)
	}
	return f.FormatString(t), nil
}
