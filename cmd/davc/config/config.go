package config

import (
	"encoding/json"
	"fmt"
	"os"
)

type Config struct {
	User     string `json:"user"`
	Pass     string `json:"pass"`
	Thread   int    `json:"thread"`
	LogLevel string `json:"log_level"`
}

func Parse(f string) (*Config, error) {
	raw, err := os.ReadFile(f)
	if err != nil {
		return nil, fmt.Errorf("read file:%w", err)
	}
	c := &Config{
		Thread:   4,
		LogLevel: "debug",
	}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("unmarshal file:%w", err)
	}
	return c, nil
}
