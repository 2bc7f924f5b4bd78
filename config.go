package mildred

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	v2 "gopkg.in/yaml.v2"
)

type Config struct {
	TplDir          string `yaml:"TplDir"`
	ExtName         string `yaml:"ExtName"`
	Debug           bool   `yaml:"Debug"`
	AlwaysRecompile bool   `yaml:"AlwaysRecompile"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	config := new(Config)
	if err = v2.UnmarshalStrict(data, config); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}

	return config, nil
}

// resolve maps a template name to its path: relative names are joined to
// TplDir and ExtName is added to names without an extension.
func (c *Config) resolve(name string) string {
	if c == nil {
		return filepath.Clean(name)
	}
	if c.ExtName != "" && filepath.Ext(name) == "" {
		ext := c.ExtName
		if ext[0] != '.' {
			ext = "." + ext
		}
		name += ext
	}
	if c.TplDir != "" && !filepath.IsAbs(name) {
		name = filepath.Join(c.TplDir, name)
	}

	return filepath.Clean(name)
}
