package confkit

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

const maxSearchDepth = 8

var dotenvOnce sync.Once

// LoadDotenvOnce loads a .env file once per process. ENV_FILE names the file
// explicitly; otherwise every .env between the working directory and the
// module root is loaded, nearest first. Existing variables win unless
// DOTENV_OVERLOAD=1. NO_DOTENV=1 disables loading.
func LoadDotenvOnce() {
	dotenvOnce.Do(loadDotenv)
}

func loadDotenv() {
	if os.Getenv("NO_DOTENV") == "1" {
		return
	}
	load := godotenv.Load
	if os.Getenv("DOTENV_OVERLOAD") == "1" {
		load = godotenv.Overload
	}
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		_ = load(envFile)
		return
	}
	for _, dir := range searchDirs() {
		if p := filepath.Join(dir, ".env"); fileExists(p) {
			_ = load(p)
		}
	}
}

// ProjectRoot walks up from the working directory to the nearest directory
// holding go.mod or .git, falling back to the working directory itself.
func ProjectRoot() (string, error) {
	dirs := searchDirs()
	if len(dirs) == 0 {
		return os.Getwd()
	}
	return dirs[len(dirs)-1], nil
}

// ProjectPath joins the project root with rel.
func ProjectPath(rel string) (string, error) {
	root, err := ProjectRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, rel), nil
}

// searchDirs lists the working directory and its parents up to and including
// the module root. Without a root only the working directory is returned.
func searchDirs() []string {
	wd, err := os.Getwd()
	if err != nil {
		return nil
	}
	dirs := []string{wd}
	dir := wd
	for i := 0; i < maxSearchDepth; i++ {
		if fileExists(filepath.Join(dir, "go.mod")) || fileExists(filepath.Join(dir, ".git")) {
			return dirs
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
		dirs = append(dirs, dir)
	}
	return []string{wd}
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
