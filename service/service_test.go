package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DarkHorse0725/NFT-marketplace/service/artifact"
	"github.com/DarkHorse0725/NFT-marketplace/service/artifact/artifacttest"
	"github.com/DarkHorse0725/NFT-marketplace/service/config"
	"github.com/DarkHorse0725/NFT-marketplace/service/registry"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Artifacts = artifacttest.WriteMarketplace(t)
	cfg.Registry.Dir = t.TempDir()
	return cfg
}

func TestDeployPlanOnHardhat(t *testing.T) {
	cfg := testConfig(t)
	cfg.Deploy.Contracts = []config.DeploySpec{
		{Name: "MOON"},
		{Name: "MoonNFT", Args: []string{"MoonNFT", "OTHERNFT", "https://ipfs.io/ipfs/"}},
		{Name: "SaleClockAuction", Args: []string{"${MoonNFT}", "${MOON}", "${MOON}", "500"}},
	}

	s, err := New(context.Background(), cfg, config.HardhatNetwork)
	require.NoError(t, err)
	defer s.Close()
	assert.NotEmpty(t, s.RunID())

	deployed, err := s.Deploy()
	require.NoError(t, err)
	require.Len(t, deployed, 3)

	records, err := s.Deployments()
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, r := range records {
		assert.Equal(t, s.RunID(), r.RunID)
		assert.Equal(t, config.HardhatNetwork, r.Network)
	}
	assert.Equal(t, deployed[2].Address.Hex(), records[2].Address)
}

func TestDefaultDeployPlanOnHardhat(t *testing.T) {
	s, err := New(context.Background(), testConfig(t), config.HardhatNetwork)
	require.NoError(t, err)
	defer s.Close()

	deployed, err := s.Deploy()
	require.NoError(t, err)
	require.Len(t, deployed, 1)
	assert.Equal(t, "SaleClockAuction", deployed[0].Name)
}

func TestScenarioOnHardhat(t *testing.T) {
	s, err := New(context.Background(), testConfig(t), config.HardhatNetwork)
	require.NoError(t, err)
	defer s.Close()

	results, err := s.Scenario()
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestNewUnknownNetwork(t *testing.T) {
	_, err := New(context.Background(), testConfig(t), "sepolia")
	require.ErrorIs(t, err, config.ErrUnknownNetwork)
}

func TestNewMissingRPCURL(t *testing.T) {
	t.Setenv("MUMBAI_RPC_URI", "")
	t.Setenv("PRIVATE_KEY", "")

	_, err := New(context.Background(), testConfig(t), "mumbai")
	require.Error(t, err)
}

func TestDeployChecksArtifactsFirst(t *testing.T) {
	cfg := testConfig(t)
	cfg.Deploy.Contracts = []config.DeploySpec{
		{Name: "MOON"},
		{Name: "MultiNFT"},
	}

	s, err := New(context.Background(), cfg, config.HardhatNetwork)
	require.NoError(t, err)
	defer s.Close()

	deployed, err := s.Deploy()
	require.ErrorIs(t, err, artifact.ErrArtifactNotFound)
	assert.Empty(t, deployed)

	records, err := s.Deployments()
	require.NoError(t, err)
	assert.Empty(t, records)
}

type closeCounter struct {
	registry.Store
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

func TestCloseReleasesRegistry(t *testing.T) {
	s, err := New(context.Background(), testConfig(t), config.HardhatNetwork)
	require.NoError(t, err)

	store := &closeCounter{Store: s.registry}
	s.registry = store
	s.Close()
	assert.Equal(t, 1, store.closed)
}
