package store

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const envFileName = ".env"

// LoadEnv loads <dir>/.env into the process environment when the file exists.
// Variables already set in the environment win.
func LoadEnv(dir string) error {
	path := filepath.Join(dir, envFileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}
