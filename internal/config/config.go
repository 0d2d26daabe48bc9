package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds scan defaults that can live in a file. Command-line flags
// override every field.
type Config struct {
	IntTag      string  `json:"int_tag"`
	CBTag       string  `json:"cb_tag"`
	UMITag      string  `json:"umi_tag"`
	Allow       []int64 `json:"allow"`
	Format      string  `json:"format"`
	Threads     int     `json:"threads"`
	LogLevel    string  `json:"log_level"`
	MetricsFile string  `json:"metrics_file"`
}

// LoadConfig loads a JSON config from path. An empty path returns an empty
// Config; a named file that cannot be read is an error.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var c Config
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &c, nil
}
