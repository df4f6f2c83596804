package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Modes for deriving the LastEditTime value.
const (
	ModeGit    = "git"    // both timestamps from git history, filesystem fallback
	ModeCommit = "commit" // creation from history, LastEditTime stamped with the current time
)

// Config represents the header updater configuration
type Config struct {
	Root       string   `mapstructure:"root"`        // scan root and git working directory
	Mode       string   `mapstructure:"mode"`        // git or commit
	Author     string   `mapstructure:"author"`      // value of the @Author and @LastEditors fields
	Email      string   `mapstructure:"email"`       // value of the @Email field
	Extensions []string `mapstructure:"extensions"`  // file extensions to update (leading dot)
	SkipDirs   []string `mapstructure:"skip_dirs"`   // directory names excluded from discovery
	IgnoreFile string   `mapstructure:"ignore_file"` // gitignore-style exclusion file, relative to root
	MaxSize    string   `mapstructure:"max_size"`    // maximum file size to touch ("" = unlimited)
	DryRun     bool     `mapstructure:"dry_run"`     // report would-be changes without writing
}

// LoadConfig loads configuration from an optional config file, environment
// variables and defaults. When cfgFile is empty, .headstamp.yaml is searched
// in the working directory and the user home directory; a missing file just
// leaves the defaults in place.
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("root", ".")
	v.SetDefault("mode", ModeGit)
	v.SetDefault("author", "wuxiaoxiao")
	v.SetDefault("email", "wuxiaoxiao@gmail.com")
	v.SetDefault("extensions", []string{".cpp", ".h", ".hpp"})
	v.SetDefault("skip_dirs", []string{"build", "bin", "CMakeFiles", ".git", ".vscode"})
	v.SetDefault("ignore_file", ".headstampignore")
	v.SetDefault("max_size", "")
	v.SetDefault("dry_run", false)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		// Search config in the working directory and home directory
		// with name ".headstamp" (without extension).
		v.SetConfigName(".headstamp")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	// Read environment variables
	v.SetEnvPrefix("HEADSTAMP")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if cfgFile != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}

		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.normalizeExtensions()

	return &cfg, nil
}

// Validate checks that the configuration is usable before any file is
// touched. All problems are reported together, not one at a time.
func (c *Config) Validate() error {
	var errs *multierror.Error

	switch c.Mode {
	case ModeGit, ModeCommit:
	default:
		errs = multierror.Append(errs,
			fmt.Errorf("unknown mode %q: must be %q or %q", c.Mode, ModeGit, ModeCommit))
	}

	if len(c.Extensions) == 0 {
		errs = multierror.Append(errs, errors.New("no target extensions configured"))
	}

	return errs.ErrorOrNil()
}

// ShouldProcess determines if a file extension belongs to the allow-set.
// The extension is matched with its leading dot, as filepath.Ext returns it.
func (c *Config) ShouldProcess(ext string) bool {
	if ext == "" {
		return false
	}

	for _, e := range c.Extensions {
		if e == ext {
			return true
		}
	}

	return false
}

// normalizeExtensions ensures every configured extension carries a leading
// dot so comparisons against filepath.Ext work regardless of config style.
func (c *Config) normalizeExtensions() {
	for i, e := range c.Extensions {
		e = strings.TrimSpace(e)
		if e != "" && !strings.HasPrefix(e, ".") {
			e = "." + e
		}

		c.Extensions[i] = e
	}
}
