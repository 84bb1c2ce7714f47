package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/dmitrijs2005/trailkeeper/internal/client/models"
)

var readFile = os.ReadFile

// AddObservation records a note on a hike: "addobs <hike id>".
func (a *App) AddObservation(ctx context.Context, args []string) error {
	hikeID, err := idArg(args, a.reader, a.out, "Enter hike id")
	if err != nil {
		return err
	}

	o := models.Observation{HikeID: hikeID}
	if o.Text, err = getSimpleText(a.reader, "Enter observation", a.out); err != nil {
		return err
	}
	comments, err := getSimpleText(a.reader, "Enter comments (optional)", a.out)
	if err != nil {
		return err
	}
	o.Comments = optString(comments)
	location, err := getSimpleText(a.reader, "Enter location (optional)", a.out)
	if err != nil {
		return err
	}
	o.Location = optString(location)

	if err := a.observations.Add(ctx, &o); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Observation #%d added", o.ID))
	return nil
}

func (a *App) DeleteObservation(ctx context.Context, args []string) error {
	ids, err := idsArg(args, a.reader, a.out, "Enter observation id to delete")
	if err != nil {
		return err
	}
	return a.observations.Delete(ctx, ids...)
}

// Attach uploads a picture for an observation: "attach <observation id> <file>".
func (a *App) Attach(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: attach <observation id> <file>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	data, err := readFile(args[1])
	if err != nil {
		return err
	}

	key, err := a.observations.AttachPicture(ctx, id, data, http.DetectContentType(data))
	if err != nil {
		return err
	}
	printlnFn("Picture stored as " + key)
	return nil
}
