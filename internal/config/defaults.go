package config

const (
	defaultThreshold      = 0.90
	defaultStrategy       = StrategyPairwise
	defaultWorkers        = 1
	defaultResultLog      = "dups.txt"
	defaultFPCalcBinary   = "fpcalc"
	defaultLengthSeconds  = 120
	defaultTimeoutSeconds = 60
	defaultCacheBackend   = BackendJSON
	defaultCacheFileName  = "fp.json"
	defaultSaveInterval   = 50
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// DefaultExtensions is the audio file allow-list used when none is configured.
var DefaultExtensions = []string{".mp3", ".flac", ".wav", ".aac", ".ogg", ".m4a"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	exts := make([]string, len(DefaultExtensions))
	copy(exts, DefaultExtensions)
	return Config{
		Scan: Scan{
			Extensions: exts,
			Threshold:  defaultThreshold,
			Strategy:   defaultStrategy,
			Workers:    defaultWorkers,
			ResultLog:  defaultResultLog,
		},
		FPCalc: FPCalc{
			Binary:         defaultFPCalcBinary,
			LengthSeconds:  defaultLengthSeconds,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Cache: Cache{
			Backend:      defaultCacheBackend,
			FileName:     defaultCacheFileName,
			SaveInterval: defaultSaveInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
