package cli

// Flags holds all command-line flag values
type Flags struct {
	CfgFile    string
	SkipHeader bool
	Backend    string
	CSV        bool
	LogLevel   string
	LogJSON    bool

	// CacheDir is where audio files are stored. It has no flag and is
	// filled from audio.cache_dir by LoadSettings.
	CacheDir string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		Backend:  "azure",
		LogLevel: "info",
		CacheDir: ".",
	}
}
