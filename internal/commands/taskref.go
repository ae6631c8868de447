package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrIDRequired indicates no ID argument was provided.
var ErrIDRequired = errors.New("id required")

// ParseID parses the leading positional argument as a server-assigned ID.
// what names the resource in error messages ("task", "category").
func ParseID(args []string, what string) (int64, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return 0, fmt.Errorf("%s %w", what, ErrIDRequired)
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s id: %s", what, args[0])
	}
	return id, nil
}

// optString is a string flag that remembers whether it was set.
type optString struct {
	set bool
	val string
}

func (o *optString) String() string { return o.val }

func (o *optString) Set(s string) error {
	o.set, o.val = true, s
	return nil
}

// optBool is a bool flag that remembers whether it was set.
type optBool struct {
	set bool
	val bool
}

func (o *optBool) String() string { return strconv.FormatBool(o.val) }

func (o *optBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	o.set, o.val = true, v
	return nil
}

func (o *optBool) IsBoolFlag() bool { return true }
