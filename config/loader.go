package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/clientkit/logger"
)

// FileSystem abstracts the file operations of the loader.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver finds config and env files.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles finds config and env files for a service.
// Returns explicit paths if provided, otherwise searches for them.
func (cr *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}

	if resolved.ConfigFile == "" {
		resolved.ConfigFile = cr.findConfigFile(serviceName)
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = cr.findEnvFile(serviceName)
	}

	return resolved
}

// configFileNames are tried in order in every search directory.
var configFileNames = []string{"clients.yml", "config.yml"}

// findConfigFile searches for clients.yml or config.yml in standard locations.
func (cr *Resolver) findConfigFile(serviceName string) string {
	dirs := []string{
		fmt.Sprintf("./cmd/%s", serviceName),
		fmt.Sprintf("./cmd/%s", shortName(serviceName)),
		fmt.Sprintf("../cmd/%s", serviceName),
		fmt.Sprintf("../cmd/%s", shortName(serviceName)),
		"./config",
		"../config",
		".",
	}

	for _, dir := range dirs {
		for _, file := range configFileNames {
			path := dir + "/" + file
			if cr.FileSystem.Exists(path) {
				return path
			}
		}
	}
	return ""
}

// findEnvFile searches for .env files in standard locations.
func (cr *Resolver) findEnvFile(serviceName string) string {
	envFiles := []string{
		fmt.Sprintf(".env.%s", serviceName),
		".env",
	}

	searchPaths := buildEnvSearchPaths(serviceName)
	if short := shortName(serviceName); short != serviceName {
		searchPaths = append(searchPaths, buildEnvSearchPaths(short)...)
	}

	for _, envFile := range envFiles {
		for _, basePath := range searchPaths {
			fullPath := basePath + "/" + envFile
			if cr.FileSystem.Exists(fullPath) {
				return fullPath
			}
		}
	}
	return ""
}

// shortName returns the part of a service name after its last dash.
func shortName(serviceName string) string {
	if idx := strings.LastIndex(serviceName, "-"); idx != -1 {
		return serviceName[idx+1:]
	}
	return serviceName
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// LoadConfig loads configuration for a service into cfg. It searches for
// config.yml and .env files in standard locations, applies environment
// overrides, and unmarshals the result.
//
// Environment variables override file values with "." replaced by "_"
// (CLIENTS_BILLING_BASE_URL for clients.billing.base_url). Client entries
// named in the file also accept overrides for fields the file omits.
func LoadConfig(serviceName string, cfg any, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(serviceName, lc)

	return loadFromResolvedFiles(serviceName, cfg, files, lc.FileSystem)
}

// loadFromResolvedFiles loads configuration from specific files.
func loadFromResolvedFiles(serviceName string, cfg any, files ResolvedFiles, fs FileSystem) error {
	log := logger.Get("config")
	v := viper.New()

	if files.ConfigFile != "" && fs.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			log.Warn("Failed to load config file", logger.Fields("file", files.ConfigFile, logger.FieldError, err.Error()))
		}
	}

	// .env values must be in the process environment before binding.
	if files.EnvFile != "" && fs.Exists(files.EnvFile) {
		if err := fs.LoadEnv(files.EnvFile); err != nil {
			log.Warn("Failed to load .env file", logger.Fields("file", files.EnvFile, logger.FieldError, err.Error()))
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindClientEnv(v)

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for service %s: %w", serviceName, err)
	}

	log.Debug("Config loaded", logger.Fields(
		"service", serviceName,
		"file", files.ConfigFile,
		"env_file", files.EnvFile,
	))
	return nil
}

// clientEnvFields are the scalar client entry keys overridable from the
// environment.
var clientEnvFields = []string{
	"transport",
	"base_url",
	"timeout",
	"token_env",
	"auth_scheme",
	"overwrite_base_url",
	"cookie_jar",
	"request_id",
	"tracing",
}

// bindClientEnv binds CLIENTS_<NAME>_<FIELD> for every client entry in the
// loaded file.
func bindClientEnv(v *viper.Viper) {
	for name := range v.GetStringMap("clients") {
		prefix := "CLIENTS_" + envName(name) + "_"
		for _, field := range clientEnvFields {
			_ = v.BindEnv("clients."+name+"."+field, prefix+strings.ToUpper(field))
		}
	}
}

// envName converts a config key segment to its environment form.
func envName(key string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(key))
}

// buildEnvSearchPaths creates a list of paths to search for .env files.
func buildEnvSearchPaths(serviceName string) []string {
	paths := pathsByPrefix(fmt.Sprintf("cmd/%s", serviceName))
	paths = append(paths, pathsByPrefix(fmt.Sprintf("config/%s", serviceName))...)
	paths = append(paths, pathsByPrefix("config")...)
	paths = append(paths, pathsByPrefix("")...)
	return paths
}

func pathsByPrefix(path string) []string {
	if path == "" {
		return []string{".", "..", "../.."}
	}
	return []string{
		fmt.Sprintf("./%s", path),
		fmt.Sprintf("../%s", path),
		fmt.Sprintf("../../%s", path),
	}
}
