package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/paul-vd/favicons"
	"github.com/paul-vd/favicons/config"
	"github.com/paul-vd/favicons/utils"
	"github.com/rs/zerolog"
)

const HelpBanner = `
┌─┐┌─┐┬  ┬┬┌─┐┌─┐┌┐┌┌─┐
├┤ ├─┤└┐┌┘││  │ ││││└─┐
└  ┴ ┴ └┘ ┴└─┘└─┘┘└┘└─┘

Favicon and app icon generator.
    Version: %s

`

// pipeName is the output name that indicates stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

var (
	// Flags
	source      = flag.String("in", "", "Comma separated source images (paths or URLs)")
	maskable    = flag.String("mask", "", "Comma separated sources for maskable icons")
	configPath  = flag.String("config", "", "YAML generation plan")
	destination = flag.String("out", "", "Destination directory, or - to write a single icon to stdout")
	iconName    = flag.String("icon", "", "Generate only the named icon of the plan")
	workers     = flag.Int("conc", 0, "Number of planes rendered concurrently (0 picks the host default)")
	sequential  = flag.Bool("seq", false, "Render planes one at a time")
	watch       = flag.Bool("watch", false, "Regenerate the icons when a source or the plan changes")
	debug       = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadPlan()
	if err != nil {
		fail(err)
	}

	r := &runner{
		cfg: cfg,
		proc: &favicons.Processor{
			Scheduler: cfg.Scheduler(runtime.GOOS),
			Logger:    &logger,
		},
		log: logger,
	}

	if *watch {
		if cfg.Output == pipeName {
			fail(fmt.Errorf("`%s` cannot be used in watch mode", pipeName))
		}
		paths := localSources(cfg)
		if *configPath != "" {
			paths = append(paths, *configPath)
		}
		w, err := newWatcher(paths, logger)
		if err != nil {
			fail(err)
		}
		defer w.Close()

		if err := r.run(ctx); err != nil {
			printError(err)
		}
		w.Run(ctx, func() {
			if err := r.reload(); err != nil {
				printError(err)
				return
			}
			if err := r.run(ctx); err != nil {
				printError(err)
			}
		})
		return
	}

	if err := r.run(ctx); err != nil {
		fail(err)
	}
}

// loadPlan reads the plan given on the command line and applies the flags on top of it.
func loadPlan() (*config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return nil, err
		}
	}

	if *source != "" {
		cfg.Sources = splitList(*source)
	}
	if *maskable != "" {
		cfg.MaskableSources = splitList(*maskable)
	}
	if *destination != "" {
		cfg.Output = *destination
	}
	if *workers > 0 {
		cfg.Concurrency = *workers
	}
	if *sequential {
		cfg.Sequential = true
	}
	if *iconName != "" {
		icons, err := selectIcons(cfg.Icons, *iconName)
		if err != nil {
			return nil, err
		}
		cfg.Icons = icons
	}

	if len(cfg.Sources) == 0 {
		return nil, fmt.Errorf("no source image given, use -in or the sources field of the plan")
	}
	if cfg.Output == pipeName && len(cfg.Icons) != 1 {
		return nil, fmt.Errorf("`%s` needs exactly one icon, pick one with -icon", pipeName)
	}
	return cfg, cfg.Validate()
}

func splitList(s string) []string {
	var list []string
	for _, el := range strings.Split(s, ",") {
		if el = strings.TrimSpace(el); el != "" {
			list = append(list, el)
		}
	}
	return list
}

func selectIcons(icons []config.Icon, name string) ([]config.Icon, error) {
	for _, icon := range icons {
		if icon.Name == name {
			return []config.Icon{icon}, nil
		}
	}
	return nil, fmt.Errorf("the plan has no icon named %q", name)
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "%s %s\n",
		utils.DecorateText("Error generating the icons:", utils.ErrorMessage),
		utils.DecorateText(err.Error(), utils.DefaultMessage),
	)
}

func fail(err error) {
	printError(err)
	os.Exit(1)
}
