package commands

import (
	"errors"

	"github.com/spf13/viper"

	"surrobench/pkg/bench"
)

// LoadConfig reads the benchmark configuration. When no path is given and
// nothing is found on the default search path, the zero config is returned
// so every field can come from flags; an explicit path that does not exist
// is an error.
func LoadConfig(path string) (bench.Config, error) {
	cfg := bench.Config{}
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".surrobench")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
