package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/trailkeeper/internal/common"
)

const dateLayout = "2006-01-02"

// idArg returns the first argument as an id, prompting when it is missing.
func idArg(args []string, r *bufio.Reader, w io.Writer, prompt string) (int64, error) {
	raw := ""
	if len(args) > 0 {
		raw = args[0]
	} else {
		var err error
		if raw, err = getSimpleText(r, prompt, w); err != nil {
			return 0, err
		}
	}
	return parseID(raw)
}

// idsArg parses every argument as an id, prompting for one when empty.
func idsArg(args []string, r *bufio.Reader, w io.Writer, prompt string) ([]int64, error) {
	if len(args) == 0 {
		id, err := idArg(nil, r, w, prompt)
		if err != nil {
			return nil, err
		}
		return []int64{id}, nil
	}
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := parseID(a)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not an id", common.ErrInvalidArgument, s)
	}
	return id, nil
}

func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: date must look like %s", common.ErrInvalidArgument, dateLayout)
	}
	return &t, nil
}

func parseFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a number", common.ErrInvalidArgument, s)
	}
	return &f, nil
}

func parseYesNo(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true":
		return true, nil
	case "", "n", "no", "false":
		return false, nil
	default:
		return false, fmt.Errorf("%w: answer yes or no", common.ErrInvalidArgument)
	}
}

func optString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
