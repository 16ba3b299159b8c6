package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tslad/pkg/capture"
	"tslad/pkg/polarity"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tslad.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	c := NewConfig()
	if err := c.LoadConfig(); err != nil {
		t.Fatalf("load: %v", err)
	}

	if c.Polarity != "active-low" || c.Input.Format != capture.FormatCSV || c.Output.File != os.Stdout {
		t.Fatalf("unexpected defaults %+v", c)
	}
}

func TestLoadConfigFile(t *testing.T) {
	c := NewConfig()
	c.Flag.ConfigFile = writeConfig(t, `
polarity: active-high
flushtrailing: true
input:
  file: trace.txt
  format: bits
output:
  format: json
webserver:
  url: http://127.0.0.1:4000
  serve: true
mqtt:
  topic: /lab/line1
`)

	if err := c.LoadConfig(); err != nil {
		t.Fatalf("load: %v", err)
	}

	if c.Polarity != "active-high" || !c.FlushTrailing {
		t.Fatalf("unexpected polarity %q flush %v", c.Polarity, c.FlushTrailing)
	}
	if c.Input.File != "trace.txt" || c.Input.Format != capture.FormatBits || c.Output.Format != "json" {
		t.Fatalf("unexpected input/output %+v %+v", c.Input, c.Output)
	}
	if !c.Webserver.Serve || c.MQTT.Topic != "/lab/line1" {
		t.Fatalf("unexpected webserver/mqtt %+v %+v", c.Webserver, c.MQTT)
	}
	// webservices not named in the file keep their defaults
	if !c.Webserver.Webservices["metrics"] {
		t.Fatalf("expected metrics webservice enabled")
	}
}

func TestFlagsOverwriteFile(t *testing.T) {
	c := NewConfig()
	c.Flag.ConfigFile = writeConfig(t, "polarity: active-high\n")
	c.Flag.Polarity = "active-low"
	c.Flag.Format = capture.FormatBits

	if err := c.LoadConfig(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Polarity != "active-low" || c.Input.Format != capture.FormatBits {
		t.Fatalf("flags not applied: %q %q", c.Polarity, c.Input.Format)
	}
}

func TestInvalidConfig(t *testing.T) {
	c := NewConfig()
	c.Flag.ConfigFile = writeConfig(t, "polarity: inverted\n")
	if err := c.LoadConfig(); !errors.Is(err, polarity.ErrUnknownPolarity) {
		t.Fatalf("expected ErrUnknownPolarity, got %v", err)
	}

	c = NewConfig()
	c.Flag.Format = "vcd"
	if err := c.LoadConfig(); !errors.Is(err, capture.ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}

	c = NewConfig()
	c.Flag.Serve = true
	if err := c.LoadConfig(); err == nil {
		t.Fatalf("expected error for serve without url")
	}
}

func TestMissingConfigFile(t *testing.T) {
	c := NewConfig()
	c.Flag.ConfigFile = filepath.Join(t.TempDir(), "missing.yaml")

	if err := c.LoadConfig(); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}
