package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/trailkeeper/internal/client/models"
	"github.com/dmitrijs2005/trailkeeper/internal/common"
)

func formatHike(h models.Hike) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s @ %s", h.ID, h.Name, h.Location)
	if h.Date != nil {
		fmt.Fprintf(&b, ", %s", h.Date.Format(dateLayout))
	}
	fmt.Fprintf(&b, ", %g km, %s", h.Length, h.Difficulty)
	if h.ParkingAvailable {
		b.WriteString(", parking")
	}
	if h.Active {
		b.WriteString(" [active]")
	}
	if !h.Synced {
		b.WriteString(" *")
	}
	return b.String()
}

// AddHike prompts for the hike fields and stores the hike locally.
func (a *App) AddHike(ctx context.Context, _ []string) error {
	var h models.Hike
	var err error

	if h.Name, err = getSimpleText(a.reader, "Enter name", a.out); err != nil {
		return err
	}
	if h.Location, err = getSimpleText(a.reader, "Enter location", a.out); err != nil {
		return err
	}

	raw, err := getSimpleText(a.reader, "Enter date (YYYY-MM-DD, optional)", a.out)
	if err != nil {
		return err
	}
	if h.Date, err = parseDate(raw); err != nil {
		return err
	}

	if raw, err = getSimpleText(a.reader, "Enter length (km)", a.out); err != nil {
		return err
	}
	length, err := parseFloat(raw)
	if err != nil {
		return err
	}
	if length != nil {
		h.Length = *length
	}

	if h.Difficulty, err = getSimpleText(a.reader, "Enter difficulty (Easy, Medium, Hard, Expert)", a.out); err != nil {
		return err
	}

	if raw, err = getSimpleText(a.reader, "Parking available? (yes/no)", a.out); err != nil {
		return err
	}
	if h.ParkingAvailable, err = parseYesNo(raw); err != nil {
		return err
	}

	if raw, err = getSimpleText(a.reader, "Parking pass to purchase (optional)", a.out); err != nil {
		return err
	}
	h.PurchaseParkingPass = optString(raw)

	desc, err := GetMultiline(a.reader, "Enter description (optional)", a.out)
	if err != nil {
		return err
	}
	h.Description = optString(desc)

	if err := a.hikes.Create(ctx, &h); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Hike #%d created", h.ID))
	return nil
}

// List prints the visible hikes. Unsynced hikes are marked with "*".
func (a *App) List(ctx context.Context, _ []string) error {
	hikes, err := a.hikes.List(ctx)
	if err != nil {
		return err
	}
	printHikes(hikes)
	return nil
}

func printHikes(hikes []models.Hike) {
	if len(hikes) == 0 {
		printlnFn("No hikes")
		return
	}
	for _, h := range hikes {
		printlnFn(formatHike(h))
	}
}

// Show prints a hike with its observations.
func (a *App) Show(ctx context.Context, args []string) error {
	id, err := idArg(args, a.reader, a.out, "Enter hike id")
	if err != nil {
		return err
	}
	h, err := a.hikes.Get(ctx, id)
	if err != nil {
		return err
	}

	printlnFn(formatHike(*h))
	if h.Description != nil {
		printlnFn("  " + *h.Description)
	}
	if h.PurchaseParkingPass != nil {
		printlnFn("  parking pass: " + *h.PurchaseParkingPass)
	}

	obs, err := a.observations.List(ctx, id)
	if err != nil {
		return err
	}
	for _, o := range obs {
		line := fmt.Sprintf("  - #%d %s %s", o.ID, o.Time.Local().Format("2006-01-02 15:04"), o.Text)
		if o.Location != nil {
			line += " @ " + *o.Location
		}
		if o.Picture != nil {
			line += " [picture]"
		}
		printlnFn(line)
		if o.Comments != nil {
			printlnFn("      " + *o.Comments)
		}
	}
	return nil
}

// Delete hides hikes locally; the deletion is not pushed.
func (a *App) Delete(ctx context.Context, args []string) error {
	ids, err := idsArg(args, a.reader, a.out, "Enter hike id to delete")
	if err != nil {
		return err
	}
	return a.hikes.Delete(ctx, ids...)
}

// Purge removes hikes and their observations from the local database.
func (a *App) Purge(ctx context.Context, args []string) error {
	ids, err := idsArg(args, a.reader, a.out, "Enter hike id to purge")
	if err != nil {
		return err
	}
	return a.hikes.Purge(ctx, ids...)
}

func (a *App) Start(ctx context.Context, args []string) error {
	id, err := idArg(args, a.reader, a.out, "Enter hike id to start")
	if err != nil {
		return err
	}
	if err := a.hikes.Start(ctx, id); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Hike #%d started", id))
	return nil
}

// End finishes the given hike, or the active one when no id is given.
func (a *App) End(ctx context.Context, args []string) error {
	var id int64
	if len(args) > 0 {
		var err error
		if id, err = parseID(args[0]); err != nil {
			return err
		}
	} else {
		h, err := a.hikes.Active(ctx)
		if errors.Is(err, common.ErrNotFound) {
			return errors.New("no active hike")
		}
		if err != nil {
			return err
		}
		id = h.ID
	}
	if err := a.hikes.End(ctx, id); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Hike #%d ended", id))
	return nil
}
