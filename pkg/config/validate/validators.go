package validate

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ValidationError represents a single validation error with context.
type ValidationError struct {
	Path    string // e.g., "gateways.defaults[0]"
	Message string // e.g., "invalid URL"
	Hint    string // e.g., "expected https://host[/path]"
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s; %s", e.Path, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidateDataDir validates that a data directory exists or can be created.
func ValidateDataDir(path string) error {
	if path == "" {
		return fmt.Errorf("must not be empty")
	}

	expandedPath := os.ExpandEnv(path)
	if strings.HasPrefix(expandedPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %v", err)
		}
		expandedPath = filepath.Join(home, expandedPath[1:])
	}

	info, err := os.Stat(expandedPath)
	switch {
	case err == nil:
		if !info.IsDir() {
			return fmt.Errorf("path exists but is not a directory")
		}
		return ValidateDirWritable(expandedPath)
	case os.IsNotExist(err):
		parent := filepath.Dir(expandedPath)
		pinfo, perr := os.Stat(parent)
		if perr != nil {
			if os.IsNotExist(perr) {
				// created at runtime
				return nil
			}
			return fmt.Errorf("parent directory not accessible: %v", perr)
		}
		if !pinfo.IsDir() {
			return fmt.Errorf("parent path is not a directory")
		}
		if err := ValidateDirWritable(parent); err != nil {
			return fmt.Errorf("parent directory not writable: %v", err)
		}
		return nil
	default:
		return fmt.Errorf("cannot access path: %v", err)
	}
}

// ValidateDirWritable validates that a directory exists and is writable.
func ValidateDirWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access directory: %v", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory")
	}

	testFile := filepath.Join(path, ".write_test")
	if err := os.WriteFile(testFile, []byte(""), 0644); err != nil {
		return fmt.Errorf("directory not writable: %v", err)
	}
	os.Remove(testFile)

	return nil
}

// ValidateHostPort validates a host:port address format.
func ValidateHostPort(hostPort string) error {
	idx := strings.LastIndex(hostPort, ":")
	if idx < 0 {
		return fmt.Errorf("expected format host:port")
	}

	host := hostPort[:idx]
	port := hostPort[idx+1:]

	if host == "" {
		return fmt.Errorf("host must not be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil || portNum < 1 || portNum > 65535 {
		return fmt.Errorf("port must be a number between 1 and 65535; got %q", port)
	}

	return nil
}

// ValidateListenAddr validates a listen address, where the host may be empty (":6080").
func ValidateListenAddr(addr string) error {
	idx := strings.LastIndex(addr, ":")
	if idx < 0 {
		return fmt.Errorf("expected format [host]:port")
	}
	portNum, err := strconv.Atoi(addr[idx+1:])
	if err != nil || portNum < 1 || portNum > 65535 {
		return fmt.Errorf("port must be a number between 1 and 65535; got %q", addr[idx+1:])
	}
	return nil
}

// ValidateHTTPURL validates an absolute http(s) URL with a host.
func ValidateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("cannot parse URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https; got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host must not be empty")
	}
	return nil
}
