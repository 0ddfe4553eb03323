package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gopkg.in/yaml.v3"

	"github.com/madara-alliance/madara-cli/internal/common"
	"github.com/madara-alliance/madara-cli/internal/config"
	"github.com/madara-alliance/madara-cli/internal/params"
)

func devnet() *params.DevnetParams {
	return &params.DevnetParams{Name: params.Ptr(params.DefaultName), BasePath: params.Ptr("./data")}
}

func sequencer(endpoint *string) *params.SequencerParams {
	return &params.SequencerParams{
		Name:            params.Ptr("Madara"),
		BasePath:        params.Ptr("./data"),
		ChainConfigPath: params.Ptr("devnet"),
		L1Endpoint:      endpoint,
		GasPrice:        params.Ptr(uint64(0)),
		BlobGasPrice:    params.Ptr(uint64(0)),
		BlockTime:       params.Ptr("10s"),
	}
}

func appChain() *params.AppChainParams {
	return &params.AppChainParams{
		Name:            params.Ptr("Madara"),
		ChainConfigPath: params.Ptr("devnet"),
		L1Endpoint:      params.Ptr("http://localhost:8545"),
		GasPrice:        params.Ptr(uint64(0)),
		BlobGasPrice:    params.Ptr(uint64(0)),
		BlockTime:       params.Ptr("10s"),
		Prover: params.ProverParams{
			Type:       params.Ptr(params.ProverAtlantic),
			APIKey:     params.Ptr("atlantic-key"),
			ServiceURL: params.Ptr("https://atlantic.api.herodotus.cloud"),
			MinBlock:   params.Ptr(uint64(1)),
			MaxBlock:   params.Ptr(uint64(100)),
		},
		Pathfinder: params.IndexerParams{
			Network:          params.Ptr(params.IndexerCustom),
			ChainID:          params.Ptr("MADARA_DEVNET"),
			EthereumURL:      params.Ptr("http://anvil:8545"),
			GatewayURL:       params.Ptr("http://madara:8080/gateway"),
			FeederGatewayURL: params.Ptr("http://madara:8080/feeder_gateway"),
			HTTPRPC:          params.Ptr("0.0.0.0:9545"),
			DataDirectory:    params.Ptr("/usr/share/pathfinder/data"),
		},
		Bootstrapper: params.BootstrapParams{DeployL2Contracts: params.Ptr(true)},
	}
}

func TestDevnetLauncherScript(t *testing.T) {
	args, err := Args(devnet())
	require.NoError(t, err)
	assert.Equal(t, []string{"--name Madara", "--devnet", "--base-path ./data", "--rpc-external"}, args)

	want := "#!/bin/sh\n\n" +
		"exec tini -- ./madara \\\n" +
		"  --name Madara \\\n" +
		"  --devnet \\\n" +
		"  --base-path ./data \\\n" +
		"  --rpc-external\n"
	assert.Equal(t, want, LauncherScript("madara", NeedsSecretGuard(params.ModeDevnet), args))
}

func TestSequencerL1SyncFlagsAreExclusive(t *testing.T) {
	tests := []struct {
		name     string
		endpoint *string
		want     string
		notWant  string
	}{
		{"no endpoint", nil, "--no-l1-sync", "--l1-endpoint"},
		{"empty endpoint", params.Ptr(""), "--no-l1-sync", "--l1-endpoint"},
		{"endpoint", params.Ptr("https://eth.example.com"), "--l1-endpoint $RPC_API_KEY", "--no-l1-sync"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := Args(sequencer(tt.endpoint))
			require.NoError(t, err)

			script := LauncherScript("madara", true, args)
			assert.Contains(t, script, tt.want)
			assert.NotContains(t, script, tt.notWant)
		})
	}
}

func TestSequencerArgs(t *testing.T) {
	b := sequencer(nil)
	b.GasPrice = params.Ptr(uint64(18446744073709551615))
	b.BlockTime = params.Ptr("1.5s")

	args, err := Args(b)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"--name Madara",
		"--sequencer",
		"--base-path ./data",
		"--preset devnet",
		"--rpc-external",
		"--gateway-enable",
		"--gateway-external",
		"--feeder-gateway-enable",
		"--gas-price 18446744073709551615",
		"--blob-gas-price 0",
		"--chain-config-override block_time=1.5s",
		"--no-l1-sync",
	}, args)
}

func TestFullNodeArgs(t *testing.T) {
	args, err := Args(&params.FullNodeParams{
		Name:     params.Ptr("Madara"),
		BasePath: params.Ptr("/var/lib/madara"),
		Network:  params.Ptr(params.NetworkIntegration),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"--name Madara",
		"--full",
		"--network integration",
		"--base-path /var/lib/madara",
		"--rpc-external",
		"--l1-endpoint $RPC_API_KEY",
	}, args)
}

func TestAppChainArgsUseInlineEndpoint(t *testing.T) {
	args, err := Args(appChain())
	require.NoError(t, err)

	assert.Contains(t, args, "--base-path /usr/share/madara/data")
	assert.Contains(t, args, "--rpc-admin")
	assert.Contains(t, args, "--rpc-admin-external")
	assert.Contains(t, args, "--l1-endpoint http://host.docker.internal:8545")
	assert.NotContains(t, args, "--l1-endpoint $RPC_API_KEY")
	assert.False(t, NeedsSecretGuard(params.ModeAppChain))
}

func TestArgsRejectIncompleteBundle(t *testing.T) {
	_, err := Args(&params.DevnetParams{Name: params.Ptr("Madara")})
	assert.ErrorIs(t, err, common.ErrMissingRequiredField)
}

func TestLauncherScriptGuard(t *testing.T) {
	script := LauncherScript("madara", true, []string{"--full"})
	assert.True(t, strings.HasPrefix(script, "#!/bin/sh\n\nif [ -f \"$RPC_API_KEY_FILE\" ]; then\n"))
	assert.Contains(t, script, "  export RPC_API_KEY=$(cat \"$RPC_API_KEY_FILE\")\n")
	assert.Contains(t, script, "  exit 1\nfi\n\nexec tini -- ./madara \\\n  --full\n")
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"./data", "./data"},
		{"http://anvil:8545", "http://anvil:8545"},
		{"my chain", "'my chain'"},
		{"it's", `'it'\''s'`},
		{"https://rpc.example.com/?key=a&b=c", "'https://rpc.example.com/?key=a&b=c'"},
		{"", "''"},
	}
	for _, tt := range tests {
		if got := shellQuote(tt.in); got != tt.want {
			t.Errorf("shellQuote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEnvFile(t *testing.T) {
	content, ok, err := EnvFile(devnet())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "BASE_PATH=./data\nCONTAINER_BASE_PATH=/usr/share/madara/data\n", content)

	content, ok, err = EnvFile(sequencer(nil))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, content, "CHAIN_CONFIG_PATH=devnet\n")

	content, _, err = EnvFile(&params.FullNodeParams{
		Name:     params.Ptr("Madara"),
		BasePath: params.Ptr("/srv/madara/"),
		Network:  params.Ptr(params.NetworkTestnet),
	})
	require.NoError(t, err)
	assert.Equal(t, "BASE_PATH=/srv/madara/\nCONTAINER_BASE_PATH=/srv/madara\nNETWORK=testnet\n", content)

	_, ok, err = EnvFile(appChain())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManifestImages(t *testing.T) {
	local, err := Manifest(devnet(), Images{Registry: config.DefaultRegistry})
	require.NoError(t, err)
	c, err := ParseManifest([]byte(local))
	require.NoError(t, err)
	assert.Equal(t, "madara-devnet", c.Name)
	assert.Equal(t, "madara:latest", c.Services["madara"].Image)
	assert.Equal(t, "madara-devnet", c.Services["madara"].ContainerName)

	pinned, err := Manifest(devnet(), Images{Registry: "ghcr.io/madara-alliance", Pinned: true})
	require.NoError(t, err)
	c, err = ParseManifest([]byte(pinned))
	require.NoError(t, err)
	assert.Equal(t, "ghcr.io/madara-alliance/madara:latest", c.Services["madara"].Image)
	assert.NotContains(t, pinned, "{{")
}

func TestAppChainManifestServices(t *testing.T) {
	out, err := Manifest(appChain(), Images{})
	require.NoError(t, err)

	c, err := ParseManifest([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, []string{"anvil", "bootstrapper", "madara", "orchestrator", "pathfinder"}, c.ServiceNames())
	assert.Equal(t, "madara-app-chain", c.Services["madara"].ContainerName)
	assert.Equal(t, "pathfinder:latest", c.Services["pathfinder"].Image)
}

func TestManifestKeepsPathsIntact(t *testing.T) {
	ac := appChain()
	ac.Pathfinder.DataDirectory = params.Ptr("/srv/pf #1")
	out, err := Manifest(ac, Images{})
	require.NoError(t, err)
	c, err := ParseManifest([]byte(out))
	require.NoError(t, err)
	assert.Contains(t, c.Services["pathfinder"].Volumes, "pathfinder_data:/srv/pf #1")

	args, err := PathfinderArgs(ac.Pathfinder)
	require.NoError(t, err)
	assert.Contains(t, args, "--data-directory '/srv/pf #1'")

	ac.Pathfinder.DataDirectory = params.Ptr("/srv/$USER/pf")
	out, err = Manifest(ac, Images{})
	require.NoError(t, err)
	c, err = ParseManifest([]byte(out))
	require.NoError(t, err)
	assert.Contains(t, c.Services["pathfinder"].Volumes, "pathfinder_data:/srv/$$USER/pf")

	ac.Pathfinder.DataDirectory = params.Ptr("/srv/pf\n    privileged: true")
	_, err = Manifest(ac, Images{})
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestQuoteYAML(t *testing.T) {
	for _, v := range []string{"plain", "/srv/pf #1", "a: b", "line\n    privileged: true", `"quoted"`} {
		quoted, err := quoteYAML(v)
		require.NoError(t, err)
		assert.NotContains(t, quoted, "\n")

		var doc map[string]string
		require.NoError(t, yaml.Unmarshal([]byte("key: "+quoted), &doc))
		assert.Equal(t, map[string]string{"key": v}, doc)
	}
}

func TestManifestMountsCustomPreset(t *testing.T) {
	builtin, err := Manifest(sequencer(nil), Images{})
	require.NoError(t, err)
	c, err := ParseManifest([]byte(builtin))
	require.NoError(t, err)
	assert.Len(t, c.Services["madara"].Volumes, 2)

	seq := sequencer(nil)
	seq.ChainConfigPath = params.Ptr("configs/chain.yaml")
	custom, err := Manifest(seq, Images{})
	require.NoError(t, err)
	c, err = ParseManifest([]byte(custom))
	require.NoError(t, err)
	assert.Contains(t, c.Services["madara"].Volumes, "${CHAIN_CONFIG_PATH}:/usr/share/madara/configs/chain.yaml:ro")

	ac := appChain()
	ac.ChainConfigPath = params.Ptr("/etc/madara/chain.yaml")
	out, err := Manifest(ac, Images{})
	require.NoError(t, err)
	c, err = ParseManifest([]byte(out))
	require.NoError(t, err)
	assert.Contains(t, c.Services["madara"].Volumes, "/etc/madara/chain.yaml:/etc/madara/chain.yaml:ro")

	assert.False(t, IsCustomPreset("Sepolia"))
	assert.True(t, IsCustomPreset("custom"))
	assert.True(t, IsCustomPreset("./chain.yaml"))
}

func TestEnvFileQuotesSpecialValues(t *testing.T) {
	d := devnet()
	d.BasePath = params.Ptr("/srv/my data #1")
	content, _, err := EnvFile(d)
	require.NoError(t, err)
	assert.Equal(t, "BASE_PATH='/srv/my data #1'\nCONTAINER_BASE_PATH='/srv/my data #1'\n", content)

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	values, err := config.ReadEnvFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/my data #1", values[config.KeyBasePath])

	d.BasePath = params.Ptr("./data\nEVIL=1")
	_, _, err = EnvFile(d)
	require.ErrorIs(t, err, common.ErrValidation)

	tests := []struct {
		value   string
		want    string
		wantErr bool
	}{
		{"./data", "./data", false},
		{"$HOME/data", "'$HOME/data'", false},
		{"a\tb", "", true},
		{"it's", "", true},
		{"x\ny", "", true},
	}
	for _, tt := range tests {
		got, err := envValue(tt.value)
		if tt.wantErr {
			assert.Error(t, err, tt.value)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestRenderTemplateMissingVariable(t *testing.T) {
	_, err := RenderTemplate(madaraTemplate, map[string]string{
		"project":        "madara-devnet",
		"container_name": "madara-devnet",
		"runner_script":  "devnet-runner.sh",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image")
}

func TestPathfinderArgs(t *testing.T) {
	custom, err := PathfinderArgs(appChain().Pathfinder)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"--network custom",
		"--chain-id MADARA_DEVNET",
		"--ethereum.url http://anvil:8545",
		"--gateway-url http://madara:8080/gateway",
		"--feeder-gateway-url http://madara:8080/feeder_gateway",
		"--storage.state-tries archive",
		"--data-directory /usr/share/pathfinder/data",
		"--http-rpc 0.0.0.0:9545",
	}, custom)

	p := appChain().Pathfinder
	p.Network = params.Ptr(params.IndexerSepolia)
	p.EthereumURL = params.Ptr("http://127.0.0.1:8545")
	public, err := PathfinderArgs(p)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"--network sepolia",
		"--ethereum.url http://host.docker.internal:8545",
		"--storage.state-tries archive",
		"--data-directory /usr/share/pathfinder/data",
		"--http-rpc 0.0.0.0:9545",
	}, public)
}

func TestOrchestratorArgs(t *testing.T) {
	args, err := OrchestratorArgs(appChain())
	require.NoError(t, err)
	assert.Contains(t, args, "--prover atlantic")
	assert.Contains(t, args, "--atlantic-api-key $ATLANTIC_API_KEY")
	assert.Contains(t, args, "--max-block-to-process 100")
	for _, a := range args {
		assert.NotContains(t, a, "atlantic-key", "the key stays in the .env file")
	}

	b := appChain()
	b.Prover = params.ProverParams{Type: params.Ptr(params.ProverDummy), MinBlock: params.Ptr(uint64(5))}
	args, err = OrchestratorArgs(b)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"run",
		"--madara-rpc-url http://madara:9944",
		"--ethereum-rpc-url http://host.docker.internal:8545",
		"--prover dummy",
		"--min-block-to-process 5",
	}, args)
}

func TestBootstrapperEnv(t *testing.T) {
	env, err := BootstrapperEnv(appChain(), config.Defaults())
	require.NoError(t, err)
	assert.Contains(t, env, "ETH_RPC=http://host.docker.internal:8545\n")
	assert.Contains(t, env, "ETH_CHAIN_ID=31337\n")
	assert.Contains(t, env, "L1_MULTISIG_ADDRESS="+config.DefaultMultisigAddress+"\n")
	assert.Contains(t, env, "DEPLOY_L2_CONTRACTS=true\n")
}

func TestRenderWritesArtifacts(t *testing.T) {
	root := t.TempDir()
	r := New(Layout{Root: root}, config.Defaults(), Images{}, zaptest.NewLogger(t))

	art, err := r.Render(devnet())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "madara", "devnet-runner.sh"), art.LauncherScript)
	assert.Equal(t, filepath.Join(root, "madara", ".env"), art.EnvFile)
	assert.Equal(t, filepath.Join(root, "madara", "compose.devnet.yaml"), art.Manifest)
	assert.Empty(t, art.Companions)

	info, err := os.Stat(art.LauncherScript)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())

	for _, f := range art.Files() {
		_, err := os.Stat(f)
		assert.NoError(t, err, f)
	}
}

func TestRenderEnforcesScriptPermissions(t *testing.T) {
	root := t.TempDir()
	r := New(Layout{Root: root}, config.Defaults(), Images{}, zaptest.NewLogger(t))

	script := r.Layout().RunnerScript(params.ModeDevnet)
	require.NoError(t, os.MkdirAll(filepath.Dir(script), 0755))
	require.NoError(t, os.WriteFile(script, []byte("stale"), 0644))

	_, err := r.Render(devnet())
	require.NoError(t, err)

	info, err := os.Stat(script)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())

	data, err := os.ReadFile(script)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
}

func TestRenderAppChainIsDeterministic(t *testing.T) {
	readAll := func(art Artifacts, root string) map[string]string {
		out := map[string]string{}
		for _, f := range art.Files() {
			data, err := os.ReadFile(f)
			require.NoError(t, err)
			rel, err := filepath.Rel(root, f)
			require.NoError(t, err)
			out[rel] = string(data)
		}
		return out
	}

	rootA, rootB := t.TempDir(), t.TempDir()
	a := New(Layout{Root: rootA}, config.Defaults(), Images{}, zaptest.NewLogger(t))
	b := New(Layout{Root: rootB}, config.Defaults(), Images{}, zaptest.NewLogger(t))

	artA, err := a.Render(appChain())
	require.NoError(t, err)
	artB, err := b.Render(appChain())
	require.NoError(t, err)

	filesA, filesB := readAll(artA, rootA), readAll(artB, rootB)
	assert.Equal(t, filesA, filesB)
	assert.Len(t, filesA, 6)

	// Rendering again over existing files is byte-identical
	artA2, err := a.Render(appChain())
	require.NoError(t, err)
	assert.Equal(t, filesA, readAll(artA2, rootA))

	info, err := os.Stat(filepath.Join(rootA, "orchestrator", ".env"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestRenderFailureWritesNothing(t *testing.T) {
	root := t.TempDir()
	r := New(Layout{Root: root}, config.Defaults(), Images{}, zaptest.NewLogger(t))

	_, err := r.Render(&params.SequencerParams{Name: params.Ptr("Madara")})
	require.Error(t, err)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
