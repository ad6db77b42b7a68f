package cli

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/minpairs/internal"
	"codeberg.org/snonux/minpairs/internal/audio"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "minpairs <input.csv>",
		Short: "Minimal Pair Anki Deck Generator",
		Long: `minpairs turns a CSV file of minimal pairs into an Anki deck.

Every row holds two words that differ in a single sound. Both words are
synthesized once and cached next to the input name; each pair yields two
cards that play one of the words and ask which of the two it was.

Examples:
  minpairs vowels.csv                   # Writes minimal_pairs_vowels.apkg
  minpairs --header tones.csv           # Skip the header row
  minpairs --backend openai tones.csv   # Use OpenAI TTS instead of Azure`,
		Args:          cobra.ExactArgs(1),
		Version:       internal.Version,
		SilenceErrors: true,
	}

	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.minpairs.yaml)")

	// Local flags
	cmd.Flags().BoolVar(&flags.SkipHeader, "header", false, "Skip the first row of the input file")
	cmd.Flags().StringVar(&flags.Backend, "backend", flags.Backend, "Speech backend: azure, openai, gemini or espeak")
	cmd.Flags().BoolVar(&flags.CSV, "csv", false, "Also write the cards as CSV next to the package")
	cmd.Flags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn or error")
	cmd.Flags().BoolVar(&flags.LogJSON, "log-json", false, "Log JSON records instead of console output")

	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("audio.backend", cmd.Flags().Lookup("backend"))
	viper.BindPFlag("log.level", cmd.Flags().Lookup("log-level"))
	viper.BindPFlag("log.json", cmd.Flags().Lookup("log-json"))
}

// InitConfig initializes viper configuration. A .env file in the working
// directory is loaded into the environment first.
func InitConfig(cfgFile string) {
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".minpairs")
	}

	setDefaults()

	// Environment variables, MINPAIRS_AUDIO_BACKEND for audio.backend
	viper.SetEnvPrefix("MINPAIRS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// The credential variable names of the speech services
	viper.BindEnv("speech.key", "MINPAIRS_SPEECH_KEY", "SPEECH_KEY")
	viper.BindEnv("speech.region", "MINPAIRS_SPEECH_REGION", "SPEECH_REGION")
	viper.BindEnv("openai.key", "MINPAIRS_OPENAI_KEY", "OPENAI_API_KEY")
	viper.BindEnv("gemini.key", "MINPAIRS_GEMINI_KEY", "GEMINI_API_KEY")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setDefaults() {
	defaults := audio.DefaultProviderConfig()
	viper.SetDefault("audio.backend", defaults.Provider)
	viper.SetDefault("audio.cache_dir", ".")
	viper.SetDefault("audio.output_format", defaults.OutputFormat)
	viper.SetDefault("audio.openai_model", defaults.OpenAIModel)
	viper.SetDefault("audio.gemini_model", defaults.GeminiModel)
	viper.SetDefault("audio.max_consecutive_failures", defaults.MaxConsecutiveFailures)
	viper.SetDefault("log.level", "info")
}

// LoadSettings copies configuration values that have no flag of their own
// into flags and resolves flag values overridden by the config file
func LoadSettings(cmd *cobra.Command, flags *Flags) {
	if !cmd.Flags().Changed("backend") {
		flags.Backend = viper.GetString("audio.backend")
	}
	if !cmd.Flags().Changed("log-level") {
		flags.LogLevel = viper.GetString("log.level")
	}
	if !cmd.Flags().Changed("log-json") {
		flags.LogJSON = viper.GetBool("log.json")
	}
	if dir := viper.GetString("audio.cache_dir"); dir != "" {
		flags.CacheDir = dir
	}
}

// BuildAudioConfig assembles the synthesis configuration for the selected
// backend. The voice is picked once here and stays fixed for the run.
func BuildAudioConfig(flags *Flags, rnd *rand.Rand, logger zerolog.Logger) (*audio.Config, error) {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	config := audio.DefaultProviderConfig()
	config.Provider = strings.ToLower(strings.TrimSpace(flags.Backend))
	if !audio.IsKnownProvider(config.Provider) {
		return nil, fmt.Errorf("unknown audio provider: %s", flags.Backend)
	}
	config.SpeechKey = GetSpeechKey()
	config.SpeechRegion = GetSpeechRegion()
	config.AzureEndpoint = viper.GetString("audio.azure_endpoint")
	config.OpenAIKey = GetOpenAIKey()
	config.GeminiKey = GetGeminiKey()

	if v := viper.GetString("audio.output_format"); v != "" {
		config.OutputFormat = v
	}
	if v := viper.GetString("audio.openai_model"); v != "" {
		config.OpenAIModel = v
	}
	if v := viper.GetString("audio.gemini_model"); v != "" {
		config.GeminiModel = v
	}
	if n := viper.GetInt("audio.max_consecutive_failures"); n > 0 {
		config.MaxConsecutiveFailures = n
	}

	voices := viper.GetStringSlice("audio.voices")
	if len(voices) == 0 {
		voices = audio.DefaultVoices(config.Provider)
	}
	voice, err := audio.ChooseVoice(voices, rnd)
	if err != nil {
		return nil, fmt.Errorf("no voice for backend %s: %w", config.Provider, err)
	}
	config.Voice = voice

	logger.Info().Str("backend", config.Provider).Str("voice", voice).Msg("Using voice")
	return config, nil
}

// GetSpeechKey retrieves the Azure speech resource key
func GetSpeechKey() string {
	return viper.GetString("speech.key")
}

// GetSpeechRegion retrieves the Azure speech resource region
func GetSpeechRegion() string {
	return viper.GetString("speech.region")
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("openai.key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("gemini.key")
}
