package config

const (
	ModeYear  = "year"
	ModeMonth = "month"
)

const (
	defaultOrganizeMode    = ModeYear
	defaultSubsecondDigits = 2
	defaultLogLevel        = "info"
	defaultLogFormat       = "text"
)

var (
	defaultExtensions = []string{
		".jpg", ".jpeg", ".png", ".webp", ".heic",
		".mp4", ".mov", ".avi", ".3gp", ".mpg", ".m4v", ".gif",
	}
	defaultMatchRules     = []string{"exact", "counter", "edited", "gif-ani", "truncated", "stem"}
	defaultEditedSuffixes = []string{"-edited"}
	defaultPlaceholders   = []string{".DS_Store", "Thumbs.db", "desktop.ini", ".localized"}
)

// Default returns a Config with every default filled in and no directories.
func Default() Config {
	return Config{
		Extensions: append([]string(nil), defaultExtensions...),
		Recover: Recover{
			MatchRules:     append([]string(nil), defaultMatchRules...),
			EditedSuffixes: append([]string(nil), defaultEditedSuffixes...),
			FixExtensions:  true,
		},
		Rename: Rename{
			SubsecondDigits: defaultSubsecondDigits,
		},
		Organize: Organize{
			Mode: defaultOrganizeMode,
		},
		Cleanup: Cleanup{
			Placeholders: append([]string(nil), defaultPlaceholders...),
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
