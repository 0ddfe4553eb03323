package render

import (
	"bytes"
	"embed"
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/madara-alliance/madara-cli/internal/config"
	"github.com/madara-alliance/madara-cli/internal/params"
)

//go:embed templates/*.yaml.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("manifests").
		Funcs(template.FuncMap{"quote": quoteYAML}).
		Option("missingkey=error").
		ParseFS(templateFS, "templates/*.yaml.tmpl"),
)

// quoteYAML renders s as a double-quoted YAML scalar, escaping line breaks
// and comment markers
func quoteYAML(s string) (string, error) {
	out, err := yaml.Marshal(&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Style: yaml.DoubleQuotedStyle, Value: s})
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(out), "\n"), nil
}

const (
	madaraTemplate   = "madara.yaml.tmpl"
	appChainTemplate = "app-chain.yaml.tmpl"
)

// Services of the app-chain stack in start order
var appChainServices = []string{"anvil", "bootstrapper", "madara", "pathfinder", "orchestrator"}

// Services returns the compose services a mode brings up
func Services(mode params.Mode) []string {
	if mode == params.ModeAppChain {
		return slices.Clone(appChainServices)
	}
	return []string{"madara"}
}

// Images picks image references: local tags, or registry-qualified tags
// when Pinned
type Images struct {
	Registry string
	Pinned   bool
}

// Ref returns the image reference of service
func (i Images) Ref(service string) string {
	if i.Pinned && i.Registry != "" {
		return i.Registry + "/" + service + ":latest"
	}
	return service + ":latest"
}

// ProjectName is the compose project and madara container name of a mode
func ProjectName(mode params.Mode) string {
	return "madara-" + mode.String()
}

// RunnerScriptName is the launcher script file name of a mode
func RunnerScriptName(mode params.Mode) string {
	return mode.String() + "-runner.sh"
}

// ComposeFile is the subset of a compose manifest the launcher inspects
type ComposeFile struct {
	Name     string                    `yaml:"name"`
	Services map[string]ComposeService `yaml:"services"`
}

// ComposeService is one service of a compose manifest
type ComposeService struct {
	Image         string   `yaml:"image"`
	ContainerName string   `yaml:"container_name"`
	Volumes       []string `yaml:"volumes"`
}

// ServiceNames returns the service names in sorted order
func (c ComposeFile) ServiceNames() []string {
	return slices.Sorted(maps.Keys(c.Services))
}

// ParseManifest decodes a rendered compose manifest
func ParseManifest(data []byte) (ComposeFile, error) {
	var c ComposeFile
	if err := yaml.Unmarshal(data, &c); err != nil {
		return ComposeFile{}, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return c, nil
}

// RenderTemplate executes a named manifest template. A variable missing from
// vars is an error.
func RenderTemplate(name string, vars map[string]string) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, vars); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

// Manifest renders the compose manifest of a resolved bundle
func Manifest(b params.Bundle, images Images) (string, error) {
	if err := params.Check(b); err != nil {
		return "", fmt.Errorf("cannot render manifest: %w", err)
	}

	mode := b.Mode()
	name := madaraTemplate
	vars := map[string]string{
		"project":            ProjectName(mode),
		"container_name":     ProjectName(mode),
		"runner_script":      RunnerScriptName(mode),
		"chain_config_mount": "",
	}

	switch v := b.(type) {
	case *params.AppChainParams:
		name = appChainTemplate
		for _, svc := range appChainServices {
			vars[svc+"_image"] = images.Ref(svc)
		}
		vars["madara_data"] = params.AppChainBasePath
		vars["pathfinder_data"] = escapeInterpolation(*v.Pathfinder.DataDirectory)
		if IsCustomPreset(*v.ChainConfigPath) {
			// The app-chain manifest has no env file, the host path is inline
			vars["chain_config_mount"] = chainConfigMount(escapeInterpolation(*v.ChainConfigPath), *v.ChainConfigPath)
		}
	case *params.SequencerParams:
		vars["image"] = images.Ref("madara")
		if IsCustomPreset(*v.ChainConfigPath) {
			vars["chain_config_mount"] = chainConfigMount("${"+config.KeyChainConfigPath+"}", *v.ChainConfigPath)
		}
	default:
		vars["image"] = images.Ref("madara")
	}

	out, err := RenderTemplate(name, vars)
	if err != nil {
		return "", err
	}
	if err := checkManifest([]byte(out), Services(mode)); err != nil {
		return "", fmt.Errorf("rendered %s manifest is invalid: %w", mode, err)
	}
	return out, nil
}

// IsCustomPreset reports whether a chain config value names a user file rather
// than a built-in preset
func IsCustomPreset(chainConfigPath string) bool {
	p, err := params.ParsePreset(chainConfigPath)
	return err != nil || p == params.PresetCustom
}

// chainConfigMount binds a custom chain config read-only where madara resolves
// the --preset path
func chainConfigMount(host, chainConfigPath string) string {
	return host + ":" + escapeInterpolation(ContainerBasePath(chainConfigPath)) + ":ro"
}

// escapeInterpolation keeps compose from expanding $ in literal values
func escapeInterpolation(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}

// checkManifest verifies that every expected service exists with an image
func checkManifest(data []byte, services []string) error {
	c, err := ParseManifest(data)
	if err != nil {
		return err
	}
	for _, name := range services {
		svc, ok := c.Services[name]
		if !ok {
			return fmt.Errorf("service %q missing", name)
		}
		if svc.Image == "" {
			return fmt.Errorf("service %q has no image", name)
		}
	}
	return nil
}
