// Package main provides the entry point for the Verso CLI application.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/versoapp/verso/internal/audio"
	"github.com/versoapp/verso/internal/cache"
	"github.com/versoapp/verso/internal/library"
	"github.com/versoapp/verso/internal/playback"
	"github.com/versoapp/verso/internal/speech"
	"github.com/versoapp/verso/ui"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	podcastNames = []string{"podcast.json", "episode.json"}

	configFile   string
	lazyLoad     bool
	voiceProfile string
	rate         float64
	volume       float64
	modelDir     string
	synthCommand string

	playbackCfg playback.Config

	rootCmd = &cobra.Command{
		Use:   "verso [PODCAST]",
		Short: "Listen to your reading library, out loud!",
		Long: paragraph(
			fmt.Sprintf("\nPlay a podcast script from your reading library, %s.", keyword("out loud")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

// validateOptions folds flag and config file values into the playback
// configuration and rejects invalid combinations early.
func validateOptions(cmd *cobra.Command) error {
	cfg, err := playback.LoadConfigFromViper()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("profile") {
		cfg.VoiceProfile = voiceProfile
	}
	if cmd.Flags().Changed("rate") {
		cfg.Rate = rate
	}
	if cmd.Flags().Changed("volume") {
		cfg.Volume = volume
	}
	if cmd.Flags().Changed("model-dir") {
		cfg.ModelDir = modelDir
	}
	if cmd.Flags().Changed("synth") {
		cfg.SynthCommand = synthCommand
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	playbackCfg = cfg
	return nil
}

// podcastFromArg resolves an argument to a podcast definition. An
// empty argument searches the working directory for a known file name.
func podcastFromArg(arg string) (*library.Podcast, error) {
	if arg == "" {
		for _, name := range podcastNames {
			if _, err := os.Stat(name); err == nil {
				return library.LoadFile(name)
			}
		}
		return nil, errors.New("missing podcast file")
	}

	st, err := os.Stat(arg)
	if err == nil && st.IsDir() {
		for _, name := range podcastNames {
			candidate := filepath.Join(arg, name)
			if _, err := os.Stat(candidate); err == nil {
				return library.LoadFile(candidate)
			}
		}
		return nil, fmt.Errorf("no podcast file found in %s", arg)
	}

	return library.LoadFile(arg)
}

// resolveCacheDir picks the audio cache location: the configured dir,
// or the platform cache dir.
func resolveCacheDir(cfg playback.Config) string {
	if cfg.CacheDir != "" {
		return cfg.CacheDir
	}
	scope := gap.NewScope(gap.User, "verso")
	dir, err := scope.CacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "verso-cache")
	}
	return filepath.Join(dir, "audio")
}

// resolveModelDir picks the voice model location: the configured dir,
// or the platform data dir.
func resolveModelDir(cfg playback.Config) string {
	if cfg.ModelDir != "" {
		return cfg.ModelDir
	}
	scope := gap.NewScope(gap.User, "verso")
	dirs, err := scope.DataDirs()
	if err != nil || len(dirs) == 0 {
		return "models"
	}
	return filepath.Join(dirs[0], "models")
}

// buildPipeline assembles the playback stack from the configuration.
// The returned closer tears the stack down.
func buildPipeline(cfg playback.Config) (*playback.Orchestrator, func(), error) {
	store, err := cache.Open(resolveCacheDir(cfg), cfg.CacheMaxAge)
	if err != nil {
		// A dead cache degrades generation, it does not block playback.
		log.Warn("audio cache unavailable", "err", err)
		store = nil
	}

	synth := speech.NewCommandSynthesizer(cfg.SynthCommand, cfg.SynthTimeout)
	if err := synth.CheckBinary(); err != nil {
		log.Warn("speech synthesis unavailable", "err", err)
	}
	catalog := speech.NewDirCatalog(resolveModelDir(cfg))
	gen := speech.NewGenerator(store, catalog, synth, cfg.Language)

	octx, err := audio.NewOutputContext(audio.SampleRate)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, nil, fmt.Errorf("unable to open audio output: %w", err)
	}

	engine := audio.NewEngine(octx, 0)
	orch := playback.NewOrchestrator(cfg, engine, gen)

	closer := func() {
		orch.Teardown()
		if store != nil {
			_ = store.Close()
		}
	}
	return orch, closer, nil
}

func execute(_ *cobra.Command, args []string) error {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	p, err := podcastFromArg(arg)
	if err != nil {
		return err
	}

	orch, closer, err := buildPipeline(playbackCfg)
	if err != nil {
		return err
	}
	defer closer()

	// Read environment to get debugging stuff
	uiCfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}
	uiCfg.Path = arg
	uiCfg.LazyLoad = lazyLoad

	if _, err := ui.NewProgram(uiCfg, orch, p).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().BoolVarP(&lazyLoad, "lazy", "z", false, "defer audio preparation until playback starts")
	rootCmd.Flags().StringVarP(&voiceProfile, "profile", "P", "calm", "voice profile (calm, energetic, deep)")
	rootCmd.Flags().Float64VarP(&rate, "rate", "r", 1.0, "playback rate (0.5 to 2.0)")
	rootCmd.Flags().Float64VarP(&volume, "volume", "v", 1.0, "output volume (0.0 to 1.0)")
	rootCmd.Flags().StringVar(&modelDir, "model-dir", "", "directory holding voice models")
	rootCmd.Flags().StringVar(&synthCommand, "synth", "", "speech synthesis binary")

	// Config bindings
	_ = viper.BindPFlag("playback.voice_profile", rootCmd.Flags().Lookup("profile"))
	_ = viper.BindPFlag("playback.rate", rootCmd.Flags().Lookup("rate"))
	_ = viper.BindPFlag("playback.volume", rootCmd.Flags().Lookup("volume"))
	_ = viper.BindPFlag("playback.model_dir", rootCmd.Flags().Lookup("model-dir"))
	_ = viper.BindPFlag("playback.synth_command", rootCmd.Flags().Lookup("synth"))

	playback.SetDefaults()

	rootCmd.AddCommand(configCmd, cacheCmd, voicesCmd, toneCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "verso")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "verso")}, dirs...)
	}

	if c := os.Getenv("VERSO_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("verso")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("verso")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "verso.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
