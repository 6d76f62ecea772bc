package config

import "github.com/DeBrosOfficial/smart-gateway/pkg/logging"

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	Format     string `yaml:"format"`      // json, console
	OutputFile string `yaml:"output_file"` // Empty for stdout
}

// Options converts the section into logger construction options.
func (l LoggingConfig) Options() logging.Options {
	return logging.Options{
		Level:        l.Level,
		Format:       l.Format,
		OutputFile:   l.OutputFile,
		EnableColors: l.OutputFile == "",
	}
}
