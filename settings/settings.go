// Package settings reads the host's configuration files. The host stores
// env overrides and MCP server definitions across several candidate files;
// lookups walk an ordered path list instead of probing ad hoc at call sites.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Settings resolves configuration from an ordered list of candidate files.
// Earlier paths win.
type Settings struct {
	Paths []string
}

// Default returns the standard candidate chain: the user-level config files
// first, then the project-local ones under cwd.
func Default(cwd string) *Settings {
	home, _ := os.UserHomeDir()
	paths := []string{
		filepath.Join(home, ".claude.json"),
		filepath.Join(home, ".claude", "settings.json"),
		filepath.Join(home, ".claude", "settings.local.json"),
	}
	if cwd != "" {
		paths = append(paths,
			filepath.Join(cwd, ".claude", "settings.json"),
			filepath.Join(cwd, ".claude", "settings.local.json"),
		)
	}
	return &Settings{Paths: paths}
}

// MCPServer is a named remote tool server: an HTTP endpoint plus headers
// (typically a bearer token).
type MCPServer struct {
	Name    string
	URL     string
	Headers map[string]string
}

type settingsFile struct {
	Env        map[string]string    `json:"env"`
	MCPServers map[string]mcpServer `json:"mcpServers"`
}

type mcpServer struct {
	Type    string            `json:"type"`
	URL     string            `json:"url"`
	HTTPURL string            `json:"httpUrl"`
	Headers map[string]string `json:"headers"`
}

// Env merges the env sections of all candidate files, first occurrence of a
// key winning. Unreadable or malformed files are skipped.
func (s *Settings) Env() map[string]string {
	merged := make(map[string]string)
	for _, f := range s.files() {
		for k, v := range f.Env {
			if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
	}
	return merged
}

// Lookup resolves the first non-empty value for any of the given keys,
// checking the shell environment before the settings env sections. Keys are
// tried in order within each source.
func (s *Settings) Lookup(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	env := s.Env()
	for _, k := range keys {
		if v := env[k]; v != "" {
			return v
		}
	}
	return ""
}

// FindMCPServer returns the first configured MCP server whose name contains
// the given pattern (case-insensitive). Header values of the form ${VAR} are
// substituted from the shell environment; Authorization values gain a Bearer
// prefix when missing.
func (s *Settings) FindMCPServer(pattern string) (*MCPServer, bool) {
	pattern = strings.ToLower(pattern)
	for _, f := range s.files() {
		for name, srv := range f.MCPServers {
			if !strings.Contains(strings.ToLower(name), pattern) {
				continue
			}
			url := srv.URL
			if url == "" {
				url = srv.HTTPURL
			}
			if url == "" {
				continue
			}
			return &MCPServer{
				Name:    name,
				URL:     url,
				Headers: substituteHeaders(srv.Headers),
			}, true
		}
	}
	return nil, false
}

func (s *Settings) files() []settingsFile {
	var out []settingsFile
	for _, path := range s.Paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var f settingsFile
		if err := json.Unmarshal(data, &f); err != nil {
			log.Warn("skipping malformed settings file", "path", path, "err", err)
			continue
		}
		out = append(out, f)
	}
	return out
}

func substituteHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for key, value := range headers {
		if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
			envValue := os.Getenv(value[2 : len(value)-1])
			if envValue == "" {
				continue
			}
			if strings.EqualFold(key, "authorization") && !strings.HasPrefix(envValue, "Bearer ") {
				envValue = "Bearer " + envValue
			}
			out[key] = envValue
			continue
		}
		out[key] = value
	}
	return out
}
