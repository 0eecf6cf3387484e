package main

import (
	"bufio"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hyiltiz/timetra.diary/internal/config"
	"github.com/hyiltiz/timetra.diary/internal/errors"
	"github.com/hyiltiz/timetra.diary/internal/ops"
	"github.com/hyiltiz/timetra.diary/internal/reconcile"
	"github.com/hyiltiz/timetra.diary/internal/storage"
	"github.com/hyiltiz/timetra.diary/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(store storage.Store, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "timetra",
		Usage:   "Personal activity diary",
		Version: Version,
		Commands: []*cli.Command{
			logCmd(store, cfg),
			inCmd(store, cfg),
			outCmd(store, cfg),
			psCmd(store, cfg),
			nowCmd(store, cfg),
			lastCmd(store, cfg),
			findCmd(store, cfg),
			setActivityCmd(store, cfg),
			webCmd(store, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// logCmd creates the log command.
func logCmd(store storage.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "log",
		Usage:     "Record a finished interval of activity",
		ArgsUsage: "[activity[@category]] [spec]",
		Flags: append(confirmFlags(),
			&cli.StringFlag{Name: "spec", Usage: "Combined time expression (\"14:00..15:30\", \"1230+45\", \"+5\")"},
			&cli.StringFlag{Name: "between", Aliases: []string{"b"}, Usage: "Start and end joined by a dash (\"12:30-14:15\")"},
			&cli.StringFlag{Name: "since", Aliases: []string{"s"}, Usage: "Start time (\"20\", \"1230\", \"-15\", \"now-5\")"},
			&cli.StringFlag{Name: "until", Aliases: []string{"u"}, Usage: "End time, same syntax as --since"},
			&cli.StringFlag{Name: "duration", Usage: "Interval length (\"45\", \"1:30\")"},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Free-form note"},
			&cli.StringSliceFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Tag (repeatable, commas split)"},
			&cli.BoolFlag{Name: "amend", Usage: "Rebound the latest fact instead of adding a new one"},
			&cli.BoolFlag{Name: "dry-run", Usage: "Report the mutation without writing"},
		),
		Action: func(c *cli.Context) error {
			spec := c.String("spec")
			if c.NArg() > 1 {
				spec = c.Args().Get(1)
			}

			input := ops.LogInput{
				Activity:    c.Args().Get(0),
				Description: c.String("description"),
				Tags:        collectTags(c.StringSlice("tag")),
				Spec:        spec,
				Between:     c.String("between"),
				Since:       c.String("since"),
				Until:       c.String("until"),
				Duration:    c.String("duration"),
				Amend:       c.Bool("amend"),
				DryRun:      c.Bool("dry-run"),
				Confirm:     confirmStrategy(c),
			}

			output, err := ops.Log(store, cfg, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// inCmd creates the in (punch in) command.
func inCmd(store storage.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "in",
		Usage:     "Start tracking an activity now",
		ArgsUsage: "[activity[@category]]",
		Flags: append(confirmFlags(),
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Free-form note"},
			&cli.StringSliceFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Tag (repeatable, commas split)"},
			&cli.BoolFlag{Name: "continued", Aliases: []string{"c"}, Usage: "Start where the last fact ended, or resume it"},
		),
		Action: func(c *cli.Context) error {
			input := ops.StartInput{
				Activity:    c.Args().Get(0),
				Description: c.String("description"),
				Tags:        collectTags(c.StringSlice("tag")),
				Continued:   c.Bool("continued"),
				Confirm:     confirmStrategy(c),
			}

			output, err := ops.Start(store, cfg, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// outCmd creates the out (punch out) command.
func outCmd(store storage.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "out",
		Usage: "Stop the currently running activity",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Free-form note"},
			&cli.StringSliceFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Tag (repeatable, commas split)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.StopInput{
				Description: c.String("description"),
				Tags:        collectTags(c.StringSlice("tag")),
			}

			output, err := ops.Stop(store, cfg, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// psCmd creates the ps (post scriptum) command.
func psCmd(store storage.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "ps",
		Usage:     "Append a timestamped note to the latest fact",
		ArgsUsage: "<text>",
		Action: func(c *cli.Context) error {
			input := ops.PostScriptumInput{
				Text: strings.Join(c.Args().Slice(), " "),
			}

			output, err := ops.PostScriptum(store, cfg, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// nowCmd creates the now command.
func nowCmd(store storage.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "now",
		Usage: "Show what is (or was last) going on",
		Action: func(c *cli.Context) error {
			output, err := ops.Current(store, cfg, ops.CurrentInput{})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// lastCmd creates the last command.
func lastCmd(store storage.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "last",
		Usage: "Show the latest fact in detail",
		Action: func(c *cli.Context) error {
			output, err := ops.Last(store, cfg)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// findCmd creates the find command.
func findCmd(store storage.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "find",
		Usage:     "Search facts and summarize time spent",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "days", Value: 1, Usage: "Window size ending today"},
		},
		Action: func(c *cli.Context) error {
			input := ops.FindInput{
				Query: strings.Join(c.Args().Slice(), " "),
				Days:  c.Int("days"),
			}

			output, err := ops.Find(store, cfg, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// setActivityCmd creates the set-activity command.
func setActivityCmd(store storage.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "set-activity",
		Usage:     "Rename one of today's facts",
		ArgsUsage: "<activity[@category]>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "number", Aliases: []string{"n"}, Value: 1, Usage: "Nth-latest fact of the day, counted from 1"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("activity is required"))
			}

			input := ops.SetActivityInput{
				Activity: c.Args().First(),
				Number:   c.Int("number"),
			}

			output, err := ops.SetActivity(store, cfg, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// webCmd creates the web command.
func webCmd(store storage.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Serve the read-only timeline UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to listen on"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8710, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(store, cfg, Version, c.String("bind"), c.Int("port"))
			if err := web.Run(srv); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// Helper functions

// confirmFlags returns the shared flags that override the interactive
// confirmation prompt.
func confirmFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Answer yes to any confirmation prompt"},
		&cli.BoolFlag{Name: "no", Usage: "Answer no to any confirmation prompt"},
	}
}

// confirmStrategy picks how destructive changes get confirmed: --yes and
// --no short-circuit, an interactive terminal gets a y/N prompt, and a
// non-interactive run declines.
func confirmStrategy(c *cli.Context) reconcile.ConfirmFunc {
	if c.Bool("yes") {
		return reconcile.AssumeYes
	}
	if c.Bool("no") {
		return reconcile.AssumeNo
	}
	if !isTerminal() {
		return reconcile.AssumeNo
	}
	return promptConfirm
}

// promptConfirm asks the user on stderr and reads one line from stdin.
func promptConfirm(prompt string) (bool, error) {
	fmt.Fprintf(os.Stderr, "%s. Proceed? [y/N] ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	return parseAnswer(line), nil
}

// parseAnswer interprets a prompt reply; anything but an explicit yes is no.
func parseAnswer(line string) bool {
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// collectTags flattens repeated --tag values, splitting comma-separated
// entries and dropping blanks.
func collectTags(values []string) []string {
	var tags []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if t := strings.TrimSpace(part); t != "" {
				tags = append(tags, t)
			}
		}
	}
	return tags
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var terr *errors.TimetraError
	if stderrors.As(err, &terr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", terr.Code, terr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
