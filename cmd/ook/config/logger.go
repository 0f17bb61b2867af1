package config

import (
	"os"

	"github.com/charmbracelet/log"
)

// NewLogger returns a timestamped stderr logger at the named level and
// installs it as the default, so components built without a logger share its
// level.
func NewLogger(prefix, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           lvl,
	})
	log.SetDefault(logger)
	return logger, nil
}
