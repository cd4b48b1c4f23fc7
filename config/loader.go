package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/railskit/errors"
)

// DefaultEnvPrefix is the environment variable prefix used by Load.
const DefaultEnvPrefix = "RAILSKIT"

// Defaulter is implemented by config structs that fill in missing values.
type Defaulter interface {
	ApplyDefaults()
}

// Validator is implemented by config structs that check themselves.
type Validator interface {
	Validate() error
}

// FileSystem interface for file operations (useful for testing).
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

// Resolver handles finding and resolving config and env files.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// DefaultSearchPaths are tried in order when Load is given no path.
var DefaultSearchPaths = []string{
	"./railskit.yml",
	"./resources.yml",
	"./config/railskit.yml",
	"./config/resources.yml",
}

// ResolveFiles returns explicit paths if provided, otherwise searches for them.
func (cr *Resolver) ResolveFiles(opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = cr.first(DefaultSearchPaths)
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = cr.first([]string{".env.railskit", ".env"})
	}
	return resolved
}

func (cr *Resolver) first(paths []string) string {
	for _, path := range paths {
		if cr.FileSystem.Exists(path) {
			return path
		}
	}
	return ""
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
	EnvPrefix  string
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix replaces DefaultEnvPrefix. An empty prefix disables
// environment overrides.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = prefix }
}

// Load reads the file at path (or the first of DefaultSearchPaths when path
// is empty) into out. An explicit path that does not exist is an error; a
// fruitless search leaves out to its defaults.
//
// After unmarshalling, Load calls ApplyDefaults and Validate when out
// implements them.
func Load(path string, out any, opts ...LoaderOption) error {
	lc := LoaderConfig{ConfigFile: path, EnvPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}
	if path != "" && !lc.FileSystem.Exists(path) {
		return errors.NotFound("config file", path)
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(lc)

	if err := loadFromResolvedFiles(out, files, lc); err != nil {
		return err
	}

	if d, ok := out.(Defaulter); ok {
		d.ApplyDefaults()
	}
	if val, ok := out.(Validator); ok {
		if err := val.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// loadFromResolvedFiles loads configuration from specific files.
func loadFromResolvedFiles(out any, files ResolvedFiles, lc LoaderConfig) error {
	v := viper.New()

	// .env first so its variables take part in the override pass.
	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			return errors.InvalidConfig(files.EnvFile, "failed to load env file").WithCause(err)
		}
	}

	if files.ConfigFile != "" {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return errors.InvalidConfig(files.ConfigFile, "failed to read config file").WithCause(err)
		}
	}

	if lc.EnvPrefix != "" {
		bindPrefixedEnv(v, lc.EnvPrefix, os.Environ())
	}

	if err := v.Unmarshal(out); err != nil {
		return errors.InvalidConfig(files.ConfigFile, fmt.Sprintf("failed to decode into %T", out)).WithCause(err)
	}
	return nil
}

// bindPrefixedEnv sets every PREFIX_* variable on v under each plausible
// nested key. RAILSKIT_CLIENT_BASE_URL yields client_base_url,
// client.base.url, client.base_url and client_base.url.
func bindPrefixedEnv(v *viper.Viper, prefix string, environ []string) {
	want := strings.ToUpper(prefix) + "_"
	for _, env := range environ {
		key, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(strings.ToUpper(key), want) {
			continue
		}
		for _, variant := range generateEnvKeyVariants(key[len(want):]) {
			if v.IsSet(variant) || isNestedCandidate(v, variant) {
				v.Set(variant, value)
			}
		}
	}
}

// isNestedCandidate reports whether the parent of a dotted key exists, so
// env vars can add leaf values the file leaves out.
func isNestedCandidate(v *viper.Viper, key string) bool {
	i := strings.LastIndexByte(key, '.')
	return i > 0 && v.IsSet(key[:i])
}

// generateEnvKeyVariants creates all possible key variants for environment variable binding.
//
//	CLIENT_BASE_URL -> [client_base_url, client.base.url, client.base_url, client_base.url]
func generateEnvKeyVariants(envKey string) []string {
	lowerKey := strings.ToLower(envKey)
	parts := strings.Split(lowerKey, "_")

	if len(parts) <= 1 {
		return []string{lowerKey}
	}

	variants := []string{
		lowerKey,
		strings.ReplaceAll(lowerKey, "_", "."),
	}

	for i := 1; i < len(parts); i++ {
		prefix := strings.Join(parts[:i], ".")
		suffix := strings.Join(parts[i:], "_")
		variants = append(variants, prefix+"."+suffix)
	}

	for i := 1; i < len(parts); i++ {
		prefix := strings.Join(parts[:i], "_")
		suffix := strings.Join(parts[i:], ".")
		variants = append(variants, prefix+"."+suffix)
	}

	return removeDuplicates(variants)
}

// removeDuplicates removes duplicate strings from a slice.
func removeDuplicates(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))

	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}

	return result
}
