package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	secomposer "github.com/sameashark/se-composer"
	"github.com/sameashark/se-composer/internal/preset"
	"github.com/sameashark/se-composer/internal/server"
)

var errNothingToRender = errors.New("no notes to render")

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render a sound to a 16-bit mono WAV file",
	Example: `  secomposer export -p laser -o laser.wav
  secomposer export -i backup.json -o out.wav`,
	RunE: runExport,
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a sound and wait for it to finish",
	RunE:  runPlay,
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Manage the preset library",
}

var presetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved presets, newest first",
	RunE:  runPresetsList,
}

var presetsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved preset",
	Args:  cobra.ExactArgs(1),
	RunE:  runPresetsDelete,
}

var sampleCmd = &cobra.Command{
	Use:       "sample <kind>",
	Short:     "Generate a randomized sound of a given kind",
	Long:      "Generate a randomized sound. Kinds: " + strings.Join(preset.Samples, ", ") + ".",
	Args:      cobra.ExactArgs(1),
	ValidArgs: preset.Samples,
	RunE:      runSample,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the composer over HTTP",
	RunE:  runServe,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the preset library whenever its file changes",
	RunE:  runWatch,
}

func runExport(cmd *cobra.Command, args []string) error {
	c, err := loadInput()
	if err != nil {
		return err
	}
	defer c.Close()
	return writeRender(c, outputPath)
}

// writeRender renders the composer state offline and writes it to path.
func writeRender(c *secomposer.Composer, path string) error {
	samples, err := c.Render()
	if err != nil {
		return fmt.Errorf("%w: %v", secomposer.ErrExportFailed, err)
	}
	if samples == nil {
		return errNothingToRender
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := secomposer.WriteWAV(f, samples, c.SampleRate(), 1); err != nil {
		f.Close()
		return fmt.Errorf("%w: %v", secomposer.ErrExportFailed, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	seconds := float64(len(samples)) / float64(c.SampleRate())
	fmt.Printf("wrote %s (%.2fs, %d Hz)\n", path, seconds, c.SampleRate())
	return nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	c, err := loadInput()
	if err != nil {
		return err
	}
	defer c.Close()
	return playAndWait(cmd.Context(), c)
}

// playAndWait plays the composer state and blocks until playback ends or
// the process is interrupted.
func playAndWait(ctx context.Context, c *secomposer.Composer) error {
	if len(c.Notes()) == 0 {
		return errNothingToRender
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ch := c.Player().Watch()
	if err := c.Play(); err != nil {
		return err
	}
	for {
		select {
		case ev := <-ch:
			slog.Debug("playback event", "kind", ev.Kind, "voices", ev.Voices)
			switch ev.Kind {
			case secomposer.EventStarted:
				fmt.Printf("playing %d voices\n", ev.Voices)
			case secomposer.EventPlaybackEnded:
				fmt.Println("playback completed")
				return nil
			}
		case <-ctx.Done():
			c.Stop()
			return nil
		}
	}
}

func runPresetsList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	list, err := store.Load()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println(mutedStyle.Render("no presets in " + store.Path()))
		return nil
	}
	fmt.Println(renderPresets(list))
	return nil
}

func runPresetsDelete(cmd *cobra.Command, args []string) error {
	c, err := newComposer()
	if err != nil {
		return err
	}
	defer c.Close()
	if err := c.DeletePreset(args[0]); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", args[0])
	return nil
}

func runSample(cmd *cobra.Command, args []string) error {
	c, err := newComposer(secomposer.WithRand(seededRand(sampleSeed)))
	if err != nil {
		return err
	}
	defer c.Close()
	if err := c.ApplySample(args[0]); err != nil {
		return err
	}
	fmt.Println(renderParams(c.Params()))

	if sampleSave != "" {
		replaced, err := c.SavePreset(sampleSave)
		if err != nil {
			return err
		}
		verb := "saved"
		if replaced {
			verb = "replaced"
		}
		fmt.Printf("%s preset %s\n", verb, sampleSave)
	}
	if outputPath != "" {
		if err := writeRender(c, outputPath); err != nil {
			return err
		}
	}
	if samplePlay {
		return playAndWait(cmd.Context(), c)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	c, err := newComposer()
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(c, server.Config{Addr: serveAddr, Logger: slog.Default()})
	return srv.Run(ctx)
}

func runWatch(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	updates := make(chan []preset.Preset)
	errs := make(chan error)
	if err := store.Watch(updates, errs, ctx.Done()); err != nil {
		return err
	}
	fmt.Println(mutedStyle.Render("watching " + store.Path()))
	for {
		select {
		case list := <-updates:
			fmt.Println(renderPresets(list))
		case err := <-errs:
			slog.Warn("reload presets", "path", store.Path(), "error", err)
		case <-ctx.Done():
			return nil
		}
	}
}
