package render

import (
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/madara-alliance/madara-cli/internal/common"
	"github.com/madara-alliance/madara-cli/internal/config"
	"github.com/madara-alliance/madara-cli/internal/params"
)

// ContainerWorkDir is the working directory of the madara image
const ContainerWorkDir = "/usr/share/madara"

type envVar struct {
	key   string
	value string
}

// EnvFile renders the madara .env file binding the host base path into the
// container. AppChain has fixed paths and gets no file (ok is false).
func EnvFile(b params.Bundle) (content string, ok bool, err error) {
	if err := params.Check(b); err != nil {
		return "", false, fmt.Errorf("cannot render env file: %w", err)
	}

	var vars []envVar
	switch v := b.(type) {
	case *params.DevnetParams:
		vars = basePathVars(*v.BasePath)
	case *params.SequencerParams:
		vars = append(basePathVars(*v.BasePath), envVar{config.KeyChainConfigPath, *v.ChainConfigPath})
	case *params.FullNodeParams:
		vars = append(basePathVars(*v.BasePath), envVar{config.KeyNetwork, v.Network.String()})
	case *params.AppChainParams:
		return "", false, nil
	default:
		return "", false, common.Unsupported(fmt.Sprintf("bundle %T", b))
	}

	content, err = formatEnv(vars)
	if err != nil {
		return "", false, err
	}
	return content, true, nil
}

func basePathVars(basePath string) []envVar {
	return []envVar{
		{config.KeyBasePath, basePath},
		{config.KeyContainerBasePath, ContainerBasePath(basePath)},
	}
}

// ContainerBasePath is where madara sees basePath inside its container
func ContainerBasePath(basePath string) string {
	if path.IsAbs(basePath) {
		return path.Clean(basePath)
	}
	return path.Join(ContainerWorkDir, basePath)
}

// envSpecial are the characters that change the meaning of an unquoted
// dotenv value
const envSpecial = " \t#$\"\\`"

func formatEnv(vars []envVar) (string, error) {
	var sb strings.Builder
	for _, v := range vars {
		value, err := envValue(v.value)
		if err != nil {
			return "", common.ValidationError(v.key, err)
		}
		fmt.Fprintf(&sb, "%s=%s\n", v.key, value)
	}
	return sb.String(), nil
}

// envValue single-quotes values holding special characters. Single-quoted
// values are taken literally by compose and by the .env reader.
func envValue(v string) (string, error) {
	if strings.ContainsFunc(v, unicode.IsControl) {
		return "", fmt.Errorf("value contains a control character: %q", v)
	}
	if strings.Contains(v, "'") {
		return "", fmt.Errorf("value contains a single quote: %q", v)
	}
	if !strings.ContainsAny(v, envSpecial) {
		return v, nil
	}
	return "'" + v + "'", nil
}
