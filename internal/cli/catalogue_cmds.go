package cli

import (
	"context"
	"net/url"
	"time"

	"github.com/jrsteele09/academy-admin/client"
	"github.com/jrsteele09/academy-admin/images"
	"github.com/jrsteele09/academy-admin/internal/config"
	"github.com/jrsteele09/academy-admin/resources"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// inlineImage loads an image file, or takes a data URI as is, and shrinks it to bounds.
func inlineImage(src string, bounds config.ImageBounds) (string, error) {
	uri := src
	if !images.IsBase64Image(src) {
		var err error
		if uri, err = images.FileToDataURI(src); err != nil {
			return "", err
		}
	}
	return images.ResizeToBounds(uri, bounds)
}

func parseDate(flag, v string) (time.Time, error) {
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("--%s: %q is not a date (YYYY-MM-DD)", flag, v)
}

func (a *App) categoriesCmd() *cobra.Command {
	crud := a.crudCmds(func(res *resources.Services) resources.Collection { return res.SportCategories.Collection })

	var (
		in    resources.SportCategoryInput
		image string
	)
	create := a.action("create", "Create a sport category", cobra.NoArgs, func(ctx context.Context, res *resources.Services, _ []string) (*client.Response, error) {
		if image != "" {
			var err error
			if in.SportImage, err = inlineImage(image, a.cfg.GetCategoryImageBounds()); err != nil {
				return nil, err
			}
		}
		return res.SportCategories.Create(ctx, in)
	})
	create.Flags().StringVar(&in.Name, "name", "", "Category name")
	create.Flags().StringVar(&in.Description, "description", "", "Description")
	create.Flags().StringVar(&image, "image", "", "Image file, resized before upload")

	var (
		b           bodyFlags
		updateImage string
	)
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a sport category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := b.build(cmd.InOrStdin())
			if err != nil {
				return err
			}
			if updateImage != "" {
				if body["sportImage"], err = inlineImage(updateImage, a.cfg.GetCategoryImageBounds()); err != nil {
					return err
				}
			}
			if len(body) == 0 {
				return errBodyRequired
			}
			return a.send(cmd, args, func(ctx context.Context, res *resources.Services, args []string) (*client.Response, error) {
				return res.SportCategories.Update(ctx, args[0], body)
			})
		},
	}
	b.register(update)
	update.Flags().StringVar(&updateImage, "image", "", "New image file, resized before upload")

	return group("categories", "Manage sport categories", crud[0], crud[1], create, update, crud[4])
}

func (a *App) tournamentsCmd() *cobra.Command {
	return group("tournaments", "Manage tournaments",
		a.listCmd(func(ctx context.Context, res *resources.Services, params url.Values) (*client.Response, error) {
			return res.Tournaments.List(ctx, params)
		}),
		a.action("get <id>", "Show one tournament", cobra.ExactArgs(1), func(ctx context.Context, res *resources.Services, args []string) (*client.Response, error) {
			return res.Tournaments.Get(ctx, args[0])
		}),
		a.createTournamentCmd(),
		a.updateTournamentCmd(),
		a.deleteCmd(func(ctx context.Context, res *resources.Services, id string) (*client.Response, error) {
			return res.Tournaments.Delete(ctx, id)
		}),
		a.action("participants <id>", "List participants", cobra.ExactArgs(1), func(ctx context.Context, res *resources.Services, args []string) (*client.Response, error) {
			return res.Tournaments.Participants(ctx, args[0])
		}),
		a.notifyTournamentCmd(),
	)
}

func (a *App) createTournamentCmd() *cobra.Command {
	var (
		in                   resources.TournamentInput
		start, end, deadline string
		image                string
	)
	cmd := a.action("create", "Create a tournament", cobra.NoArgs, func(ctx context.Context, res *resources.Services, _ []string) (*client.Response, error) {
		var err error
		if in.StartDate, err = parseDate("start", start); err != nil {
			return nil, err
		}
		if in.EndDate, err = parseDate("end", end); err != nil {
			return nil, err
		}
		if in.RegistrationDeadline, err = parseDate("deadline", deadline); err != nil {
			return nil, err
		}
		if image != "" {
			if in.TournamentImage, err = inlineImage(image, a.cfg.GetTournamentImageBounds()); err != nil {
				return nil, err
			}
		}
		return res.Tournaments.Create(ctx, in)
	})
	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "Tournament name")
	f.StringVar(&in.Description, "description", "", "Description")
	f.StringVar(&in.SportCategory, "category", "", "Sport category id")
	f.StringVar(&start, "start", "", "Start date, YYYY-MM-DD")
	f.StringVar(&end, "end", "", "End date, YYYY-MM-DD")
	f.StringVar(&deadline, "deadline", "", "Registration deadline, YYYY-MM-DD")
	f.StringVar(&in.Location.Name, "location", "", "Venue name")
	f.StringVar(&in.Location.Address.City, "city", "", "Venue city")
	f.IntVar(&in.MaxParticipants, "max", 0, "Maximum participants, 0 for no limit")
	f.StringVar(&in.FormURL, "form-url", "", "Registration form URL")
	f.StringVar(&in.Organizer, "organizer", "", "Organizer")
	f.StringVar(&image, "image", "", "Image file, resized before upload")
	return cmd
}

func (a *App) updateTournamentCmd() *cobra.Command {
	var (
		b     bodyFlags
		image string
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a tournament",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := b.build(cmd.InOrStdin())
			if err != nil {
				return err
			}
			if image != "" {
				if body["tournamentImage"], err = inlineImage(image, a.cfg.GetTournamentImageBounds()); err != nil {
					return err
				}
			}
			return a.send(cmd, args, func(ctx context.Context, res *resources.Services, args []string) (*client.Response, error) {
				return res.Tournaments.Update(ctx, args[0], body)
			})
		},
	}
	b.register(cmd)
	cmd.Flags().StringVar(&image, "image", "", "New image file, resized before upload")
	return cmd
}

func (a *App) notifyTournamentCmd() *cobra.Command {
	var in resources.NotificationInput
	cmd := a.action("notify <id>", "Notify the participants of a tournament", cobra.ExactArgs(1), func(ctx context.Context, res *resources.Services, args []string) (*client.Response, error) {
		return res.Tournaments.Notify(ctx, args[0], in)
	})
	addNotificationFlags(cmd, &in)
	return cmd
}
