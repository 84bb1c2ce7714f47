package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/trailkeeper/internal/common"
	"github.com/dmitrijs2005/trailkeeper/internal/search"
)

// Search ranks hikes for the words following the command. Semantic search
// is used when enabled with -s and available.
func (a *App) Search(ctx context.Context, args []string) error {
	query := strings.Join(args, " ")
	if query == "" {
		var err error
		if query, err = getSimpleText(a.reader, "Enter search query", a.out); err != nil {
			return err
		}
	}

	hikes, err := a.search.Search(ctx, query, a.config != nil && a.config.SemanticSearch)
	if err != nil {
		return err
	}
	printHikes(hikes)
	return nil
}

// Filter applies key=value criteria, for example
//
//	filter name=ridge min=5 max=20 from=2024-01-01 to=2024-12-31 difficulty=Hard parking=yes
func (a *App) Filter(ctx context.Context, args []string) error {
	f, err := parseFilter(args)
	if err != nil {
		return err
	}
	hikes, err := a.search.Filter(ctx, f)
	if err != nil {
		return err
	}
	printHikes(hikes)
	return nil
}

func parseFilter(args []string) (search.Filter, error) {
	var f search.Filter
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return f, fmt.Errorf("%w: %q is not key=value", common.ErrInvalidArgument, arg)
		}
		var err error
		switch strings.ToLower(key) {
		case "name":
			f.Name = value
		case "location":
			f.Location = value
		case "min":
			f.MinLength, err = parseFloat(value)
		case "max":
			f.MaxLength, err = parseFloat(value)
		case "from":
			f.StartDate, err = parseDate(value)
		case "to":
			f.EndDate, err = parseDate(value)
		case "difficulty":
			f.Difficulty = value
		case "parking":
			f.Parking = value
		default:
			err = fmt.Errorf("%w: unknown filter %q", common.ErrInvalidArgument, key)
		}
		if err != nil {
			return f, err
		}
	}
	return f, nil
}
