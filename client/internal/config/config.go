package config

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const fileName = ".nimbus.yml"

type (
	Config struct {
		Host      string    `yaml:"host"`
		ProfileID uuid.UUID `yaml:"profileID"`
	}
)

func path() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return fileName
	}
	return filepath.Join(home, fileName)
}

// Parse reads the CLI config. A missing file yields the default config
// pointing at a local server.
func Parse() (Config, error) {
	c := Config{Host: "http://127.0.0.1:4666/"}

	fi, err := os.Open(path())
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, err
	}
	defer fi.Close()

	value, err := io.ReadAll(fi)
	if err != nil {
		return c, err
	}

	if err = yaml.Unmarshal(value, &c); err != nil {
		return c, err
	}
	return c, nil
}

func Save(c Config) error {
	value, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path(), value, 0600)
}
