// Command salonctl drives the salon booking client from a terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"salonai/app"
	"salonai/config"
	"salonai/services/schedule"
	"salonai/utils"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var errUsage = errors.New("usage")

type command struct {
	summary string
	run     func(ctx context.Context, a *app.App, args []string) error
}

var commands = map[string]command{
	"login":         {"log in with --email and --password", runLogin},
	"logout":        {"sign out and forget the stored session", runLogout},
	"whoami":        {"print the logged-in user", runWhoami},
	"register":      {"create a client account", runRegister},
	"professionals": {"list professionals for --service", runProfessionals},
	"slots":         {"list free times for --professional on --date", runSlots},
	"book":          {"book an appointment", runBook},
	"my":            {"list your appointments", runMy},
	"schedule":      {"show the professional's day", runSchedule},
	"confirm":       {"confirm appointment ID", transitionCommand((*schedule.Panel).Confirm)},
	"cancel":        {"cancel appointment ID", transitionCommand((*schedule.Panel).Cancel)},
	"start":         {"start appointment ID", transitionCommand((*schedule.Panel).Start)},
	"finish":        {"save the attendance record of appointment ID", runFinish},
	"record":        {"show the attendance record of appointment ID", runRecord},
	"strand-test":   {"record the strand test of appointment ID", runStrandTest},
	"theme":         {"print the theme, or save it with --primary/--secondary", runTheme},
	"lang":          {"list languages or switch to LANG", runLang},
	"upload":        {"upload a photo for analysis", runUpload},
	"analyze":       {"analyse the uploaded photo", runAnalyze},
	"preview":       {"generate a preview of --style", runPreview},
	"health":        {"check the API and session store", runHealth},
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: salonctl <command> [flags]")
	fmt.Fprintln(w)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-14s %s\n", name, commands[name].summary)
	}
}

func newFlags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage(os.Stderr)
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		usage(os.Stderr)
		return 2
	}

	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, config.AppConfig, app.Deps{})
	if err != nil {
		logger.Error("salonctl: failed to start", zap.Error(err))
		return 1
	}
	defer a.Close()

	if args[0] != "health" {
		a.Startup(ctx)
	}

	if err := cmd.run(ctx, a, args[1:]); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, pflag.ErrHelp) {
			return 2
		}
		logger.Debug("command failed", zap.String("command", args[0]), zap.Error(err))
		return 1
	}
	return 0
}
