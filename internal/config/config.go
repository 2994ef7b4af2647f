package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/marben/fractal_explorer/palette"
	"github.com/marben/fractal_explorer/session"
)

const (
	ImageWidth  = 470
	ImageHeight = 470
	NumColors   = 512

	// MemoryMB bounds the memory held by all drawings of a session.
	MemoryMB = 256

	TCPAddr  = ":8081"
	HTTPAddr = ":8080"

	FileName = ".fractalrc"
)

type Config struct {
	Width     int
	Height    int
	NumColors int
	Scheme    string
	MemoryMB  int
	TCPAddr   string
	HTTPAddr  string
}

func Default() *Config {
	return &Config{
		Width:     ImageWidth,
		Height:    ImageHeight,
		NumColors: NumColors,
		Scheme:    palette.Default,
		MemoryMB:  MemoryMB,
		TCPAddr:   TCPAddr,
		HTTPAddr:  HTTPAddr,
	}
}

// Load reads ~/.fractalrc over the defaults. A missing file is not an error.
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Default(), nil
	}
	return LoadFile(filepath.Join(homeDir, FileName))
}

// LoadFile reads key = value lines from path over the defaults.
// Blank lines and lines starting with # are skipped.
func LoadFile(path string) (*Config, error) {
	config := Default()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch strings.ToLower(key) {
		case "width", "image_width":
			config.Width, err = positive(value)
		case "height", "image_height":
			config.Height, err = positive(value)
		case "colors", "num_colors", "numcolors":
			config.NumColors, err = positive(value)
		case "scheme", "color_scheme":
			config.Scheme = value
		case "memory_mb", "memory":
			config.MemoryMB, err = positive(value)
		case "tcp_addr", "tcp":
			config.TCPAddr = value
		case "http_addr", "http":
			config.HTTPAddr = value
		}
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %s: %w", path, lineNum, key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return config, nil
}

func positive(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("must be at least 1, got %d", n)
	}
	return n, nil
}

// MemoryLimit is the session budget in bytes.
func (c *Config) MemoryLimit() int64 {
	return int64(c.MemoryMB) << 20
}

// SessionConfig returns the session settings described by c.
func (c *Config) SessionConfig() session.Config {
	return session.Config{
		Width:       c.Width,
		Height:      c.Height,
		Palettes:    palette.New(c.NumColors),
		Scheme:      c.Scheme,
		MemoryLimit: c.MemoryLimit(),
	}
}
