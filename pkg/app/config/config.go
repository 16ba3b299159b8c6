package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/womat/debug"
	"gopkg.in/yaml.v2"
	"tslad/pkg/annotation"
	"tslad/pkg/capture"
	"tslad/pkg/polarity"
)

// Config holds the application configuration.
// Config defines the struct of global config and the struct of the configuration file
type Config struct {
	Polarity      string          `yaml:"polarity"`
	FlushTrailing bool            `yaml:"flushtrailing"`
	Flag          FlagConfig      `yaml:"-"`
	Input         InputConfig     `yaml:"input"`
	Output        OutputConfig    `yaml:"output"`
	Debug         DebugConfig     `yaml:"debug"`
	Webserver     WebserverConfig `yaml:"webserver"`
	MQTT          MQTTConfig      `yaml:"mqtt"`
}

// FlagConfig defines the configured flags (parameters)
// Non empty flag values overwrite the values of the configuration file.
type FlagConfig struct {
	Debug      string
	ConfigFile string
	Polarity   string
	Input      string
	Format     string
	Output     string
	Serve      bool
}

// InputConfig defines the capture to decode.
type InputConfig struct {
	// File is the capture file, "-" or "stdin" reads from stdin.
	File   string `yaml:"file"`
	Format string `yaml:"format"`
}

// OutputConfig defines where the annotations are written.
type OutputConfig struct {
	File       io.WriteCloser `yaml:"-"`
	FileString string         `yaml:"file"`
	Format     string         `yaml:"format"`
}

// WebserverConfig defines the struct of the webserver and webservice configuration and configuration file
type WebserverConfig struct {
	URL         string          `yaml:"url"`
	Serve       bool            `yaml:"serve"`
	Webservices map[string]bool `yaml:"webservices"`
}

// MQTTConfig defines the struct of the mqtt client configuration and configuration file
type MQTTConfig struct {
	Connection string `yaml:"connection"`
	Topic      string `yaml:"topic"`
}

// DebugConfig defines the struct of the debug configuration and configuration file
type DebugConfig struct {
	File       io.WriteCloser `yaml:"-"`
	Flag       int            `yaml:"-"`
	FlagString string         `yaml:"flag"`
	FileString string         `yaml:"file"`
}

func NewConfig() *Config {
	return &Config{
		Polarity: polarity.Default,
		Flag:     FlagConfig{},
		Input: InputConfig{
			File:   "-",
			Format: capture.FormatCSV,
		},
		Output: OutputConfig{
			FileString: "stdout",
			Format:     annotation.FormatText,
		},
		Debug: DebugConfig{
			FileString: "stderr",
			FlagString: "standard",
		},
		Webserver: WebserverConfig{
			URL: "",
			Webservices: map[string]bool{
				"version": true,
				"health":  true,
				"data":    true,
				"metrics": true,
			},
		},
		MQTT: MQTTConfig{
			Connection: "",
			Topic:      "/tslad/annotations",
		},
	}
}

// LoadConfig reads the configuration file (if defined), applies the flags and validates the result.
func (c *Config) LoadConfig() error {
	if c.Flag.ConfigFile != "" {
		if err := c.readConfigFile(); err != nil {
			return fmt.Errorf("error reading config file %q: %w", c.Flag.ConfigFile, err)
		}
	}

	c.applyFlags()

	if err := c.Validate(); err != nil {
		return err
	}

	if err := c.setDebugConfig(); err != nil {
		return fmt.Errorf("unable to open debug file %q: %w", c.Debug.FileString, err)
	}

	if err := c.setOutputConfig(); err != nil {
		return fmt.Errorf("unable to open output file %q: %w", c.Output.FileString, err)
	}

	return nil
}

func (c *Config) applyFlags() {
	if c.Flag.Debug != "" {
		c.Debug.FlagString = c.Flag.Debug
	}
	if c.Flag.Polarity != "" {
		c.Polarity = c.Flag.Polarity
	}
	if c.Flag.Input != "" {
		c.Input.File = c.Flag.Input
	}
	if c.Flag.Format != "" {
		c.Input.Format = c.Flag.Format
	}
	if c.Flag.Output != "" {
		c.Output.Format = c.Flag.Output
	}
	if c.Flag.Serve {
		c.Webserver.Serve = true
	}
}

// Validate checks the values which can't be checked while decoding the file.
func (c *Config) Validate() error {
	if _, err := polarity.Parse(c.Polarity); err != nil {
		return err
	}

	if !contains(capture.Formats(), c.Input.Format) {
		return fmt.Errorf("%w: %q", capture.ErrUnknownFormat, c.Input.Format)
	}

	if c.Output.Format != annotation.FormatText && c.Output.Format != annotation.FormatJSON {
		return fmt.Errorf("%w: %q", annotation.ErrUnknownFormat, c.Output.Format)
	}

	if c.Webserver.Serve && c.Webserver.URL == "" {
		return errors.New("webserver url is required to serve")
	}

	return nil
}

func (c *Config) readConfigFile() error {
	file, err := os.Open(c.Flag.ConfigFile)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	decoder := yaml.NewDecoder(file)
	if err = decoder.Decode(c); err != nil {
		return err
	}

	return nil
}

func (c *Config) setDebugConfig() (err error) {
	// defines Debug section of global.Config
	switch c.Debug.FlagString {
	case "trace", "full":
		c.Debug.Flag = debug.Full
	case "debug":
		c.Debug.Flag = debug.Warning | debug.Info | debug.Error | debug.Fatal | debug.Debug
	default:
		c.Debug.Flag = debug.Standard
	}

	c.Debug.File, err = openWriter(c.Debug.FileString, os.Stderr)
	return
}

func (c *Config) setOutputConfig() (err error) {
	c.Output.File, err = openWriter(c.Output.FileString, os.Stdout)
	return
}

// openWriter opens the file name, "stderr" and "stdout" are the standard streams, "" is def.
func openWriter(name string, def io.WriteCloser) (io.WriteCloser, error) {
	switch name {
	case "":
		return def, nil
	case "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	default:
		return os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
