package config

const (
	defaultDataDir    = "~/.local/share/eyra/data"
	defaultLogDir     = "~/.local/share/eyra/logs"
	defaultAPIBind    = "127.0.0.1:7331"
	defaultFFmpeg     = "ffmpeg"
	defaultMinFreeGiB = 2
	defaultLanguage   = "is-IS"
	defaultLogFormat  = "console"
	defaultLogLevel   = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Verification: Verification{
			TrimEnabled: true,
			FFmpeg:      defaultFFmpeg,
			MinFreeGiB:  defaultMinFreeGiB,
			Language:    defaultLanguage,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
