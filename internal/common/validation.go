// Package common holds the validation predicates and error kinds shared by the
// resolver, the secrets manager and the init flow.
package common

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	blockTimePattern = regexp.MustCompile(`^[0-9]+(\.[0-9]{1,2})?s$`)
	dottedNumeric    = regexp.MustCompile(`^[0-9.]+$`)
	hexPattern       = regexp.MustCompile(`^[0-9a-fA-F]*$`)

	allowedSchemes = []string{"http", "https", "ws", "wss"}
)

const invalidFilenameChars = `/\<>:"|?*`

// ValidateIP validates an IPv4 address
func ValidateIP(ip string) error {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return fmt.Errorf("invalid IP address: %s", ip)
	}

	if parsed.To4() == nil {
		return fmt.Errorf("not a valid IPv4 address: %s", ip)
	}

	return nil
}

// ValidatePort validates a port number (1-65535)
func ValidatePort(port string) error {
	p, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("invalid port number: %s", port)
	}

	if p < 1 || p > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got: %d", p)
	}

	return nil
}

// ValidateHostPort validates a host:port listen address such as 0.0.0.0:9545
func ValidateHostPort(value string) error {
	host, port, err := net.SplitHostPort(value)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", value, err)
	}
	if host != "" {
		if err := validateHost(host); err != nil {
			return err
		}
	}
	return ValidatePort(port)
}

// ValidatePath validates a filesystem path (relative or absolute)
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if strings.ContainsFunc(path, unicode.IsControl) {
		return fmt.Errorf("path contains a control character: %q", path)
	}
	return nil
}

// ValidateNotEmpty validates that a string is not empty
func ValidateNotEmpty(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("value cannot be empty")
	}
	return nil
}

// ValidateHostname validates a DNS hostname. Single-label names such as
// "anvil" are accepted because compose service names are valid hosts.
func ValidateHostname(host string) error {
	if host == "" {
		return fmt.Errorf("hostname cannot be empty")
	}

	if len(host) > 253 {
		return fmt.Errorf("hostname too long: %s", host)
	}

	for _, label := range strings.Split(host, ".") {
		if label == "" {
			return fmt.Errorf("invalid hostname (empty label): %s", host)
		}
		if len(label) > 63 {
			return fmt.Errorf("hostname label too long: %s", label)
		}

		for i, c := range label {
			if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-') {
				return fmt.Errorf("invalid character in hostname: %s", host)
			}
			if c == '-' && (i == 0 || i == len(label)-1) {
				return fmt.Errorf("hostname label cannot start or end with hyphen: %s", label)
			}
		}
	}

	return nil
}

func validateHost(host string) error {
	switch {
	case host == "localhost":
		return nil
	case strings.Contains(host, ":"):
		if ip := net.ParseIP(host); ip == nil || ip.To4() != nil {
			return fmt.Errorf("invalid IPv6 address: %s", host)
		}
		return nil
	case dottedNumeric.MatchString(host):
		return ValidateIP(host)
	default:
		return ValidateHostname(host)
	}
}

// ValidateURL validates an endpoint URL. The scheme must be http, https, ws or
// wss, credentials are rejected and an explicit port must be nonzero.
func ValidateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	scheme, _, found := strings.Cut(raw, "://")
	if !found || !isAllowedScheme(scheme) {
		return fmt.Errorf("URL must start with http://, https://, ws://, or wss://: %s", raw)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if u.User != nil {
		return fmt.Errorf("URL cannot contain authentication credentials")
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("URL is missing a host: %s", raw)
	}
	if err := validateHost(host); err != nil {
		return fmt.Errorf("invalid host: %w", err)
	}

	if port := u.Port(); port != "" {
		if err := ValidatePort(port); err != nil {
			return err
		}
	}

	return nil
}

// ValidateOptionalURL accepts the empty string as "no endpoint"
func ValidateOptionalURL(raw string) error {
	if raw == "" {
		return nil
	}
	return ValidateURL(raw)
}

func isAllowedScheme(scheme string) bool {
	for _, s := range allowedSchemes {
		if scheme == s {
			return true
		}
	}
	return false
}

// ParseU64 parses an unsigned 64-bit decimal integer
func ParseU64(value string) (uint64, error) {
	if value == "" {
		return 0, fmt.Errorf("value cannot be empty")
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("value must be a valid unsigned 64-bit integer: %s", value)
	}
	return n, nil
}

// ParseOptionalU64 maps the empty string to nil
func ParseOptionalU64(value string) (*uint64, error) {
	if value == "" {
		return nil, nil
	}
	n, err := ParseU64(value)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ValidateU64 validates an unsigned 64-bit decimal integer
func ValidateU64(value string) error {
	_, err := ParseU64(value)
	return err
}

// ValidateOptionalU64 accepts the empty string as unset
func ValidateOptionalU64(value string) error {
	_, err := ParseOptionalU64(value)
	return err
}

// ValidateBlockTime validates a positive duration in seconds with at most two
// decimal places, e.g. "10s" or "1.5s".
func ValidateBlockTime(value string) error {
	if !blockTimePattern.MatchString(value) {
		return fmt.Errorf("time value must look like 10s or 1.5s (at most 2 decimals): %q", value)
	}

	n, err := strconv.ParseFloat(strings.TrimSuffix(value, "s"), 64)
	if err != nil {
		return fmt.Errorf("invalid number format for time value: %q", value)
	}
	if n <= 0 {
		return fmt.Errorf("time value must be greater than 0: %q", value)
	}

	return nil
}

// ValidateFilename validates a config file name
func ValidateFilename(name string) error {
	if name == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	if len(name) > 255 {
		return fmt.Errorf("filename is too long (max 255 characters)")
	}

	if i := strings.IndexAny(name, invalidFilenameChars); i >= 0 {
		return fmt.Errorf("filename contains invalid character: %c", name[i])
	}

	if strings.TrimSpace(name) != name {
		return fmt.Errorf("filename cannot start or end with spaces")
	}

	if !strings.HasSuffix(name, ".toml") {
		return fmt.Errorf("file must have a .toml extension")
	}

	return nil
}

func validateHex(value string, bytes int, field string) error {
	if !strings.HasPrefix(value, "0x") {
		return fmt.Errorf("%s must start with '0x'", field)
	}

	if !hexPattern.MatchString(value[2:]) {
		return fmt.Errorf("%s must contain only hexadecimal characters", field)
	}

	if want := 2 + bytes*2; len(value) != want {
		return fmt.Errorf("%s must be %d characters long (including '0x')", field, want)
	}

	return nil
}

// ValidateEthAddress validates a 0x-prefixed 20-byte hex address
func ValidateEthAddress(value string) error {
	return validateHex(value, 20, "Ethereum address")
}

// ValidatePrivateKey validates a 0x-prefixed 32-byte hex key
func ValidatePrivateKey(value string) error {
	return validateHex(value, 32, "private key")
}

// DockerHostURL rewrites loopback hosts so the URL is reachable from inside a
// container. Other URLs are returned unchanged.
func DockerHostURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("URL is missing a host: %s", raw)
	}
	if host != "localhost" && host != "127.0.0.1" {
		return raw, nil
	}

	if port := u.Port(); port != "" {
		u.Host = net.JoinHostPort("host.docker.internal", port)
	} else {
		u.Host = "host.docker.internal"
	}
	return u.String(), nil
}
