package cli

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jrsteele09/academy-admin/client"
	"github.com/jrsteele09/academy-admin/resources"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type sendFunc func(ctx context.Context, res *resources.Services, args []string) (*client.Response, error)

// send runs fn against an admin session and prints the response data.
func (a *App) send(cmd *cobra.Command, args []string, fn sendFunc) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	resp, err := fn(ctx, a.res, args)
	if err != nil {
		return explain(err)
	}
	return newPrinter(cmd.OutOrStdout(), a.output).PrintResponse(resp)
}

// explain adds what the operator should do next to the errors that need it.
func explain(err error) error {
	switch client.Classify(err) {
	case client.KindAuthentication:
		if errors.Is(err, client.ErrSessionEnded) {
			return fmt.Errorf("session ended, log in again: %w", err)
		}
	case client.KindNetwork:
		return fmt.Errorf("backend unreachable: %w", err)
	}
	return err
}

func (a *App) action(use, short string, args cobra.PositionalArgs, fn sendFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.send(cmd, args, fn)
		},
	}
}

// listCmd adds --query, --page and --limit to a list call.
func (a *App) listCmd(list func(ctx context.Context, res *resources.Services, params url.Values) (*client.Response, error)) *cobra.Command {
	var (
		query       []string
		page, limit int
	)
	cmd := a.action("list", "List items", cobra.NoArgs, func(ctx context.Context, res *resources.Services, _ []string) (*client.Response, error) {
		params := url.Values{}
		for _, kv := range query {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				return nil, errors.Errorf("invalid --query %q, expected key=value", kv)
			}
			params.Add(k, v)
		}
		if page > 0 {
			params.Set("page", strconv.Itoa(page))
		}
		if limit > 0 {
			params.Set("limit", strconv.Itoa(limit))
		}
		return list(ctx, res, params)
	})
	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "Filter as key=value, repeatable")
	cmd.Flags().IntVar(&page, "page", 0, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size")
	return cmd
}

// bodyCmd builds a command whose request body comes from --data, --file and --set.
func (a *App) bodyCmd(use, short string, args cobra.PositionalArgs, fn func(ctx context.Context, res *resources.Services, args []string, body map[string]any) (*client.Response, error)) *cobra.Command {
	var b bodyFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := b.build(cmd.InOrStdin())
			if err != nil {
				return err
			}
			return a.send(cmd, args, func(ctx context.Context, res *resources.Services, args []string) (*client.Response, error) {
				return fn(ctx, res, args, body)
			})
		},
	}
	b.register(cmd)
	return cmd
}

// crudCmds are list, get, create, update and delete over a plain collection.
func (a *App) crudCmds(col func(res *resources.Services) resources.Collection) []*cobra.Command {
	return []*cobra.Command{
		a.listCmd(func(ctx context.Context, res *resources.Services, params url.Values) (*client.Response, error) {
			return col(res).List(ctx, params)
		}),
		a.action("get <id>", "Show one item", cobra.ExactArgs(1), func(ctx context.Context, res *resources.Services, args []string) (*client.Response, error) {
			return col(res).Get(ctx, args[0])
		}),
		a.bodyCmd("create", "Create an item", cobra.NoArgs, func(ctx context.Context, res *resources.Services, _ []string, body map[string]any) (*client.Response, error) {
			if len(body) == 0 {
				return nil, errBodyRequired
			}
			return col(res).Create(ctx, body)
		}),
		a.bodyCmd("update <id>", "Update fields of an item", cobra.ExactArgs(1), func(ctx context.Context, res *resources.Services, args []string, body map[string]any) (*client.Response, error) {
			if len(body) == 0 {
				return nil, errBodyRequired
			}
			return col(res).Update(ctx, args[0], body)
		}),
		a.deleteCmd(func(ctx context.Context, res *resources.Services, id string) (*client.Response, error) {
			return col(res).Delete(ctx, id)
		}),
	}
}

func (a *App) deleteCmd(del func(ctx context.Context, res *resources.Services, id string) (*client.Response, error)) *cobra.Command {
	return a.action("delete <id>", "Delete an item", cobra.ExactArgs(1), func(ctx context.Context, res *resources.Services, args []string) (*client.Response, error) {
		return del(ctx, res, args[0])
	})
}

func group(use, short string, cmds ...*cobra.Command) *cobra.Command {
	g := &cobra.Command{Use: use, Short: short}
	g.AddCommand(cmds...)
	return g
}

func (a *App) resourceCmds() []*cobra.Command {
	return []*cobra.Command{
		a.studentsCmd(),
		a.coachesCmd(),
		a.tournamentsCmd(),
		a.categoriesCmd(),
		a.dietPlansCmd(),
		a.activitiesCmd(),
		a.notificationsCmd(),
		group("subscriptions", "Manage subscriptions", append(a.crudCmds(func(res *resources.Services) resources.Collection {
			return res.Subscriptions.Collection
		}), a.action("stats", "Subscription statistics", cobra.NoArgs, func(ctx context.Context, res *resources.Services, _ []string) (*client.Response, error) {
			return res.Subscriptions.Stats(ctx)
		}))...),
		group("users", "Manage user accounts", append(a.crudCmds(func(res *resources.Services) resources.Collection {
			return res.Users.Collection
		}), a.action("stats", "User statistics", cobra.NoArgs, func(ctx context.Context, res *resources.Services, _ []string) (*client.Response, error) {
			return res.Users.Stats(ctx)
		}))...),
		group("content", "Manage announcements", a.crudCmds(func(res *resources.Services) resources.Collection {
			return res.Content.Collection
		})...),
		a.reportsCmd(),
	}
}

func (a *App) studentsCmd() *cobra.Command {
	return group("students", "Browse students",
		a.listCmd(func(ctx context.Context, res *resources.Services, params url.Values) (*client.Response, error) {
			return res.Students.List(ctx, params)
		}),
		a.action("get <id>", "Show one student", cobra.ExactArgs(1), func(ctx context.Context, res *resources.Services, args []string) (*client.Response, error) {
			return res.Students.Get(ctx, args[0])
		}),
		a.action("progress <id>", "Show a student's progress", cobra.ExactArgs(1), func(ctx context.Context, res *resources.Services, args []string) (*client.Response, error) {
			return res.Students.Progress(ctx, args[0])
		}),
		a.action("activities <id>", "List a student's activities", cobra.ExactArgs(1), func(ctx context.Context, res *resources.Services, args []string) (*client.Response, error) {
			return res.Students.Activities(ctx, args[0], nil)
		}),
	)
}

func (a *App) coachesCmd() *cobra.Command {
	crud := a.crudCmds(func(res *resources.Services) resources.Collection { return res.Coaches.Collection })
	byID := func(use, short string, fn func(c *resources.Coaches, ctx context.Context, id string) (*client.Response, error)) *cobra.Command {
		return a.action(use+" <id>", short, cobra.ExactArgs(1), func(ctx context.Context, res *resources.Services, args []string) (*client.Response, error) {
			return fn(res.Coaches, ctx, args[0])
		})
	}
	pair := func(use, short string, fn func(c *resources.Coaches, ctx context.Context, coachID, studentID string) (*client.Response, error)) *cobra.Command {
		return a.action(use+" <coach-id> <student-id>", short, cobra.ExactArgs(2), func(ctx context.Context, res *resources.Services, args []string) (*client.Response, error) {
			return fn(res.Coaches, ctx, args[0], args[1])
		})
	}

	return group("coaches", "Manage coaches",
		crud[0], crud[1], a.createCoachCmd(), crud[3], crud[4],
		byID("approve", "Approve a coach", (*resources.Coaches).Approve),
		byID("suspend", "Suspend a coach", (*resources.Coaches).Suspend),
		byID("performance", "Show a coach's performance", (*resources.Coaches).Performance),
		byID("schedule", "Show a coach's schedule", (*resources.Coaches).Schedule),
		byID("students", "List a coach's students", (*resources.Coaches).Students),
		a.bodyCmd("set-schedule <id>", "Replace a coach's schedule", cobra.ExactArgs(1), func(ctx context.Context, res *resources.Services, args []string, body map[string]any) (*client.Response, error) {
			return res.Coaches.UpdateSchedule(ctx, args[0], body)
		}),
		pair("assign", "Assign a student to a coach", (*resources.Coaches).AssignStudent),
		pair("unassign", "Remove a student from a coach", (*resources.Coaches).RemoveStudent),
	)
}

func (a *App) createCoachCmd() *cobra.Command {
	var in resources.CoachInput
	cmd := a.action("create", "Create a coach account", cobra.NoArgs, func(ctx context.Context, res *resources.Services, _ []string) (*client.Response, error) {
		in.PasswordConfirm = in.Password
		return res.Coaches.Create(ctx, in)
	})
	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "Full name")
	f.StringVar(&in.Email, "email", "", "Login email")
	f.StringVar(&in.Phone, "phone", "", "Phone number")
	f.StringVar(&in.Password, "password", "", "Initial password, at least 6 characters")
	f.StringVar(&in.Bio, "bio", "", "Short biography")
	f.IntVar(&in.ExperienceYears, "experience", 0, "Years of experience")
	f.StringSliceVar(&in.SportsCategories, "sports", nil, "Sport categories, comma separated")
	f.StringSliceVar(&in.Expertise, "expertise", nil, "Areas of expertise")
	f.StringSliceVar(&in.Certifications, "certifications", nil, "Certifications")
	return cmd
}

func (a *App) dietPlansCmd() *cobra.Command {
	return group("dietplans", "Manage diet plans", append(a.crudCmds(func(res *resources.Services) resources.Collection {
		return res.DietPlans.Collection
	}), a.action("assign <id> <student-id>...", "Assign a diet plan to students", cobra.MinimumNArgs(2), func(ctx context.Context, res *resources.Services, args []string) (*client.Response, error) {
		return res.DietPlans.Assign(ctx, args[0], args[1:])
	}))...)
}

func (a *App) activitiesCmd() *cobra.Command {
	return group("activities", "Manage activities", append(a.crudCmds(func(res *resources.Services) resources.Collection {
		return res.Activities.Collection
	}),
		a.action("stats", "Activity statistics", cobra.NoArgs, func(ctx context.Context, res *resources.Services, _ []string) (*client.Response, error) {
			return res.Activities.Stats(ctx, nil)
		}),
		a.bodyCmd("track-area <id>", "Record the area covered by an activity", cobra.ExactArgs(1), func(ctx context.Context, res *resources.Services, args []string, body map[string]any) (*client.Response, error) {
			return res.Activities.TrackArea(ctx, args[0], body)
		}),
	)...)
}

func (a *App) notificationsCmd() *cobra.Command {
	var in resources.NotificationInput
	send := a.action("send", "Send a system notification", cobra.NoArgs, func(ctx context.Context, res *resources.Services, _ []string) (*client.Response, error) {
		return res.Notifications.CreateSystem(ctx, in)
	})
	addNotificationFlags(send, &in)

	return group("notifications", "Manage notifications",
		a.listCmd(func(ctx context.Context, res *resources.Services, params url.Values) (*client.Response, error) {
			return res.Notifications.List(ctx, params)
		}),
		a.action("get <id>", "Show one notification", cobra.ExactArgs(1), func(ctx context.Context, res *resources.Services, args []string) (*client.Response, error) {
			return res.Notifications.Get(ctx, args[0])
		}),
		a.deleteCmd(func(ctx context.Context, res *resources.Services, id string) (*client.Response, error) {
			return res.Notifications.Delete(ctx, id)
		}),
		a.action("read <id>", "Mark a notification as read", cobra.ExactArgs(1), func(ctx context.Context, res *resources.Services, args []string) (*client.Response, error) {
			return res.Notifications.MarkRead(ctx, args[0])
		}),
		a.action("read-all", "Mark every notification as read", cobra.NoArgs, func(ctx context.Context, res *resources.Services, _ []string) (*client.Response, error) {
			return res.Notifications.MarkAllRead(ctx)
		}),
		a.action("delete-read", "Delete read notifications", cobra.NoArgs, func(ctx context.Context, res *resources.Services, _ []string) (*client.Response, error) {
			return res.Notifications.DeleteRead(ctx)
		}),
		a.action("unread", "Count unread notifications", cobra.NoArgs, func(ctx context.Context, res *resources.Services, _ []string) (*client.Response, error) {
			return res.Notifications.UnreadCount(ctx)
		}),
		send,
	)
}

func addNotificationFlags(cmd *cobra.Command, in *resources.NotificationInput) {
	f := cmd.Flags()
	f.StringVar(&in.Title, "title", "", "Title")
	f.StringVar(&in.Message, "message", "", "Message")
	f.StringVar(&in.RecipientType, "recipients", resources.RecipientsAll, "all, students, coaches or specific")
	f.StringSliceVar(&in.RecipientIDs, "to", nil, "Recipient ids when --recipients=specific")
	f.StringVar(&in.Priority, "priority", "", "low, medium or high")
}

func (a *App) reportsCmd() *cobra.Command {
	return group("reports", "Generate reports",
		a.listCmd(func(ctx context.Context, res *resources.Services, params url.Values) (*client.Response, error) {
			return res.Reports.List(ctx, params)
		}),
		a.bodyCmd("generate <type>", "Generate a report", cobra.ExactArgs(1), func(ctx context.Context, res *resources.Services, args []string, body map[string]any) (*client.Response, error) {
			return res.Reports.Generate(ctx, args[0], body)
		}),
	)
}
