package config

const (
	defaultConfigPath     = "~/.config/pagecompare/config.toml"
	defaultLogDir         = "~/.local/share/pagecompare/logs"
	defaultReportDir      = "~/.local/share/pagecompare/reports"
	defaultHistoryPath    = "~/.local/share/pagecompare/history.db"
	defaultReportTitle    = "Page Comparison Report"
	defaultTolerance      = 2
	defaultPixelThreshold = 0.1
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"

	// MaxTolerance is the upper clamp applied to alignment.tolerance.
	MaxTolerance = 5
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Alignment: Alignment{
			Tolerance:      defaultTolerance,
			PixelThreshold: defaultPixelThreshold,
		},
		Paths: Paths{
			LogDir:    defaultLogDir,
			ReportDir: defaultReportDir,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
		Report: Report{
			Title: defaultReportTitle,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
