package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
	m "picobuild.dev/pkg/picobuild/internal/model"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "picobuild"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	outFlagName         = "out"
	cartFlagName        = "cart"
	layoutFlagName      = "layout"
	maxTabsFlagName     = "max-tabs"
	maxTabBytesFlagName = "max-tab-bytes"
	parallelFlagName    = "parallel"
	reportFlagName      = "report"
	verboseFlagName     = "verbose"

	cartConfigKey        = "cart"
	outConfigKey         = "out"
	layoutConfigKey      = "layout"
	maxTabsConfigKey     = "limits.max_tabs"
	maxTabBytesConfigKey = "limits.max_tab_bytes"
	parallelConfigKey    = "build.parallel"
	recursiveConfigKey   = "scan.recursive"
	reportConfigKey      = "report"

	formatHeaderKey      = "format.header"
	formatCodeSectionKey = "format.code_section"
	formatTabMarkerKey   = "format.tab_marker"

	defaultCartName = "cart"
	defaultParallel = 4

	cartExtension = ".p8"

	envPrefix = "PICOBUILD"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".picobuild.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(cartConfigKey, defaultCartName)
	viper.SetDefault(outConfigKey, "")
	viper.SetDefault(layoutConfigKey, string(m.LayoutFolderPerTab))
	viper.SetDefault(maxTabsConfigKey, m.DefaultMaxTabs)
	viper.SetDefault(maxTabBytesConfigKey, 0)
	viper.SetDefault(parallelConfigKey, defaultParallel)
	viper.SetDefault(recursiveConfigKey, false)
	viper.SetDefault(reportConfigKey, "")

	defaultFormat := m.DefaultCartFormat()
	viper.SetDefault(formatHeaderKey, defaultFormat.Header)
	viper.SetDefault(formatCodeSectionKey, defaultFormat.CodeSection)
	viper.SetDefault(formatTabMarkerKey, defaultFormat.TabMarker)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		return
	}
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug. Logs go to
// a rolling file, never to the terminal, so TUI output stays clean.
func configureLogger(verbose bool) {
	logPath := viper.GetString(logFilenameKey)
	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}

// resolveProfile builds the constraint profile from configuration.
func resolveProfile() m.ConstraintProfile {
	return m.ConstraintProfile{
		MaxTabs:     viper.GetInt(maxTabsConfigKey),
		MaxTabBytes: viper.GetInt(maxTabBytesConfigKey),
	}
}

// resolveFormat builds the cart format from configuration.
func resolveFormat() m.CartFormat {
	return m.CartFormat{
		Header:      viper.GetStringSlice(formatHeaderKey),
		CodeSection: viper.GetString(formatCodeSectionKey),
		TabMarker:   viper.GetString(formatTabMarkerKey),
	}
}

// resolveOut returns the artifact path: the configured one, or
// <root>/<cart>.p8 when unset.
func resolveOut(root m.Path) m.Path {
	if out := viper.GetString(outConfigKey); out != "" {
		return m.Path(out)
	}

	cart := viper.GetString(cartConfigKey)
	if cart == "" {
		cart = defaultCartName
	}

	if !strings.HasSuffix(cart, cartExtension) {
		cart += cartExtension
	}

	return m.Path(filepath.Join(string(root), cart))
}
