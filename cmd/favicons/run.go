package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/paul-vd/favicons"
	"github.com/paul-vd/favicons/config"
	"github.com/paul-vd/favicons/ico"
	"github.com/paul-vd/favicons/utils"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// runner generates the icons of a plan and persists them.
type runner struct {
	cfg  *config.Config
	proc *favicons.Processor
	log  zerolog.Logger

	// stdout receives the artifact when the output is the pipe name.
	stdout *os.File
}

// reload reads the plan again after it changed on disk.
func (r *runner) reload() error {
	cfg, err := loadPlan()
	if err != nil {
		return err
	}
	r.cfg = cfg
	r.proc.Scheduler = cfg.Scheduler(runtime.GOOS)
	return nil
}

// run loads the sources, generates every icon of the plan and writes the results.
func (r *runner) run(ctx context.Context) error {
	spinnerText := fmt.Sprintf("%s %s",
		utils.DecorateText("⚡ FAVICONS", utils.StatusMessage),
		utils.DecorateText("is generating the icons...", utils.DefaultMessage))
	spinner := utils.NewSpinner(spinnerText, time.Millisecond*100, true)

	now := time.Now()
	spinner.Start()
	artifacts, err := r.generate(ctx)
	if err != nil {
		spinner.Stop(utils.DecorateText("⚡ FAVICONS generation failed ✘", utils.ErrorMessage))
		return err
	}
	spinner.Stop(fmt.Sprintf("%s %s",
		utils.DecorateText("⚡ FAVICONS", utils.StatusMessage),
		utils.DecorateText("is generating the icons... ✔", utils.DefaultMessage)))

	if err := r.write(artifacts); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\nExecution time: %s\n", utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
	return nil
}

func (r *runner) generate(ctx context.Context) ([]*favicons.Artifact, error) {
	sources, err := loadSources(ctx, r.cfg.Sources)
	if err != nil {
		return nil, err
	}
	var masked []*favicons.Source
	if len(r.cfg.MaskableSources) > 0 {
		if masked, err = loadSources(ctx, r.cfg.MaskableSources); err != nil {
			return nil, err
		}
	}

	return r.proc.Generate(ctx, favicons.Request{
		Sources:         sources,
		MaskableSources: masked,
		Artifacts:       r.cfg.Artifacts(),
	})
}

// loadSources resolves the source references, downloading remote ones.
func loadSources(ctx context.Context, refs []string) ([]*favicons.Source, error) {
	list := make([]any, len(refs))
	for i, ref := range refs {
		if !utils.IsValidUrl(ref) {
			list[i] = ref
			continue
		}
		data, err := utils.DownloadImage(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("failed to load the source image: %w", err)
		}
		list[i] = data
	}
	return favicons.LoadSources(list)
}

// localSources returns the source references of the plan that are files on disk.
func localSources(cfg *config.Config) []string {
	var paths []string
	for _, ref := range append(append([]string{}, cfg.Sources...), cfg.MaskableSources...) {
		if !utils.IsValidUrl(ref) {
			paths = append(paths, ref)
		}
	}
	return paths
}

func (r *runner) write(artifacts []*favicons.Artifact) error {
	if r.cfg.Output == pipeName {
		if len(artifacts) != 1 {
			return fmt.Errorf("`%s` needs exactly one icon, got %d", pipeName, len(artifacts))
		}
		out := r.stdout
		if out == nil {
			out = os.Stdout
		}
		if term.IsTerminal(int(out.Fd())) {
			return errors.New("`-` should be used with a pipe for stdout")
		}
		_, err := out.Write(artifacts[0].Contents)
		return err
	}

	for _, a := range artifacts {
		path, err := writeArtifact(r.cfg.Output, a)
		if err != nil {
			return err
		}
		r.log.Debug().Str("path", path).Int("bytes", len(a.Contents)).Msg("artifact written")
		printStatus(os.Stderr, path, a)
	}
	return nil
}

// writeArtifact stores a under dir and returns its path.
func writeArtifact(dir string, a *favicons.Artifact) (string, error) {
	path := filepath.Join(dir, a.Name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("unable to create the destination directory: %w", err)
	}
	if err := os.WriteFile(path, a.Contents, 0644); err != nil {
		return "", fmt.Errorf("unable to write the destination file: %w", err)
	}
	return path, nil
}

// printStatus displays where an artifact has been saved. For containers it
// also lists the sizes packed into it.
func printStatus(w io.Writer, path string, a *favicons.Artifact) {
	detail := utils.FormatBytes(len(a.Contents))
	if entries, err := ico.DecodeDirectory(a.Contents); err == nil {
		detail += ","
		for _, e := range entries {
			detail += fmt.Sprintf(" %dx%d", e.Width, e.Height)
		}
	}
	fmt.Fprintf(w, "The icon has been saved as: %s %s\n",
		utils.DecorateText(path, utils.SuccessMessage),
		utils.DecorateText("("+detail+")", utils.DefaultMessage),
	)
}
