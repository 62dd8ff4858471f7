// Package utils carries the small plumbing helpers around the stealth
// core: .env configuration and IPFS memo storage.
package utils

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// GetENV reads a key from the module's .env file, falling back to the
// process environment when no .env exists.
func GetENV(key string) string {
	_ = godotenv.Load(filepath.Join(GetGoModPath(), ".env"))
	return os.Getenv(key)
}

func GetAllEnv() map[string]string {
	envMap, _ := godotenv.Read(filepath.Join(GetGoModPath(), ".env"))
	if envMap == nil {
		envMap = map[string]string{}
	}
	return envMap
}

func WriteAllEnv(envMap map[string]string) {
	godotenv.Write(envMap, filepath.Join(GetGoModPath(), ".env"))
}

// GetGoModPath walks up from the working directory to the module root.
func GetGoModPath() string {
	currentDir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(currentDir, "go.mod")); err == nil {
			return currentDir
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}
