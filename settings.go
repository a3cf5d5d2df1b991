package main

import "github.com/kelseyhightower/envconfig"

// Settings are read from SCONSPP_* environment variables.
type Settings struct {
	File      string `envconfig:"FILE" default:"sconspp.yaml"`
	Python    string `envconfig:"PYTHON" default:"python3"`
	PythonDir string `envconfig:"PYTHON_DIR"`
	CC        string `envconfig:"CC" default:"cc"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"warn"`
	LogDev    bool   `envconfig:"LOG_DEV" default:"false"`
}

func loadSettings() (Settings, error) {
	var s Settings
	if err := envconfig.Process("sconspp", &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
