package main

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"

	secomposer "github.com/sameashark/se-composer"
	"github.com/sameashark/se-composer/internal/preset"
)

var (
	// Global flags
	presetsPath string
	sampleRate  int
	verbose     bool

	// Input flags shared by export and play
	inputPath  string
	presetName string

	// Export flags
	outputPath string

	// Sample flags
	sampleSeed uint64
	sampleSave string
	samplePlay bool

	// Serve flags
	serveAddr string
)

var rootCmd = &cobra.Command{
	Use:   "secomposer",
	Short: "Compose short synthesized sound effects",
	Long: `secomposer builds retro sound effects from a parameter set and a grid of
notes. It plays them live, renders them to 16-bit WAV and keeps a library of
named presets in a JSON file.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)

	presetsCmd.AddCommand(presetsListCmd)
	presetsCmd.AddCommand(presetsDeleteCmd)

	rootCmd.PersistentFlags().StringVar(&presetsPath, "presets", preset.DefaultPath, "Preset library file")
	rootCmd.PersistentFlags().IntVar(&sampleRate, "rate", secomposer.DefaultSampleRate, "Sample rate for playback and export")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	for _, c := range []*cobra.Command{exportCmd, playCmd} {
		c.Flags().StringVarP(&inputPath, "input", "i", "", "Exported document or preset array to load")
		c.Flags().StringVarP(&presetName, "preset", "p", "", "Saved preset to load")
	}
	exportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output WAV file")
	exportCmd.MarkFlagRequired("output")

	sampleCmd.Flags().Uint64Var(&sampleSeed, "seed", 0, "Random seed (0 picks one)")
	sampleCmd.Flags().StringVar(&sampleSave, "save", "", "Save the sample as a preset with this name")
	sampleCmd.Flags().BoolVar(&samplePlay, "play", false, "Play the sample")
	sampleCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the sample to a WAV file")

	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", ":8080", "Address to listen on")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStore resolves the preset library flag.
func openStore() (*preset.FileStore, error) {
	return preset.NewFileStore(presetsPath)
}

// newComposer builds a composer backed by the preset library. Extra options
// are applied last.
func newComposer(opts ...secomposer.ComposerOption) (*secomposer.Composer, error) {
	store, err := openStore()
	if err != nil {
		return nil, err
	}
	base := []secomposer.ComposerOption{
		secomposer.WithSampleRate(sampleRate),
		secomposer.WithPresetStore(store),
		secomposer.WithComposerLogger(slog.Default()),
	}
	return secomposer.NewComposer(append(base, opts...)...)
}

// loadInput builds a composer holding the state named by --input and
// --preset. An input file is imported into a composer without a store so
// the library on disk is left alone; --preset then picks from the imported
// list. A bare preset array carries no current state, so its newest entry
// is loaded unless --preset names another.
func loadInput() (*secomposer.Composer, error) {
	if inputPath == "" {
		c, err := newComposer()
		if err != nil {
			return nil, err
		}
		if presetName != "" {
			if err := c.LoadPreset(presetName); err != nil {
				c.Close()
				return nil, err
			}
		}
		return c, nil
	}
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, err
	}
	doc, err := preset.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", inputPath, secomposer.ErrInvalidFormat, err)
	}
	name := presetName
	if name == "" && doc.Bare && len(doc.History) > 0 {
		name = doc.History[0].Name
	}
	c, err := secomposer.NewComposer(
		secomposer.WithSampleRate(sampleRate),
		secomposer.WithComposerLogger(slog.Default()),
	)
	if err != nil {
		return nil, err
	}
	if err := c.Import(data); err != nil {
		c.Close()
		return nil, fmt.Errorf("%s: %w", inputPath, err)
	}
	if name != "" {
		if err := c.LoadPreset(name); err != nil {
			c.Close()
			return nil, err
		}
	}
	return c, nil
}

func seededRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}
