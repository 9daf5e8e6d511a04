package deployer

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DarkHorse0725/NFT-marketplace/service/abiarg"
	"github.com/DarkHorse0725/NFT-marketplace/service/artifact"
	"github.com/DarkHorse0725/NFT-marketplace/service/artifact/artifacttest"
	"github.com/DarkHorse0725/NFT-marketplace/service/chain"
	"github.com/DarkHorse0725/NFT-marketplace/service/config"
	"github.com/DarkHorse0725/NFT-marketplace/service/registry"
)

func newDeployer(t *testing.T) (*Deployer, *registry.FileStore) {
	t.Helper()
	client, err := chain.NewSimulated(2)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	store := registry.NewFileStore(t.TempDir())
	d := New(client, artifact.NewStore(artifacttest.WriteMarketplace(t)), store, "run-test")
	return d, store
}

func TestDeployMarketplaceContracts(t *testing.T) {
	ctx := context.Background()
	d, store := newDeployer(t)

	deployed, err := d.DeployAll(ctx, []config.DeploySpec{
		{Name: "MOON"},
		{Name: "MoonNFT", Args: []string{"MoonNFT", "MoonNFT", "https://ipfs.io/ipfs/"}},
		{Name: "Marketplace", Alias: "market", Args: []string{"${MoonNFT}", "${MOON}", "100"}},
		{Name: "contracts/SaleClockAuction.sol:SaleClockAuction", Args: []string{"${MoonNFT}", "${MOON}", "${MOON}", "12"}},
	})
	require.NoError(t, err)
	require.Len(t, deployed, 4)

	market, err := d.Contract("market")
	require.NoError(t, err)
	assert.Equal(t, "Marketplace", market.Name)

	auction, err := d.Contract("SaleClockAuction")
	require.NoError(t, err)
	assert.Equal(t, auction.Address.Hex(), d.Vars()["SaleClockAuction"])

	code, err := d.Client().Backend.CodeAt(ctx, auction.Address, nil)
	require.NoError(t, err)
	assert.Equal(t, common.FromHex("0x60206000f3"), code)

	records, err := store.List(ctx, config.HardhatNetwork)
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "run-test", records[2].RunID)
	assert.Equal(t, int64(config.HardhatChainID), records[2].ChainID)
	assert.Equal(t, []string{d.Vars()["MoonNFT"], d.Vars()["MOON"], "100"}, records[2].Args)
	assert.Equal(t, d.Vars()["owner"], records[0].Deployer)
	assert.NotZero(t, records[3].BlockNumber)
}

func TestSignerVars(t *testing.T) {
	d, _ := newDeployer(t)

	owner, _ := d.Client().Address(0)
	other, _ := d.Client().Address(1)
	assert.Equal(t, owner.Hex(), d.Vars()["owner"])
	assert.Equal(t, owner.Hex(), d.Vars()["signer0"])
	assert.Equal(t, other.Hex(), d.Vars()["other"])
	assert.Equal(t, other.Hex(), d.Vars()["signer1"])
}

func TestDeployStopsAtFirstFailure(t *testing.T) {
	ctx := context.Background()
	d, store := newDeployer(t)

	deployed, err := d.DeployAll(ctx, []config.DeploySpec{
		{Name: "MOON"},
		{Name: "Marketplace", Args: []string{"${MoonNFT}", "${MOON}", "100"}},
		{Name: "MoonNFT", Args: []string{"a", "b", "c"}},
	})
	require.ErrorIs(t, err, abiarg.ErrUnknownVar)
	require.Len(t, deployed, 1)

	records, err := store.List(ctx, config.HardhatNetwork)
	require.NoError(t, err)
	require.Len(t, records, 1)

	_, err = d.Contract("MoonNFT")
	require.ErrorIs(t, err, ErrUnknownContract)
}

func TestDeployErrors(t *testing.T) {
	ctx := context.Background()
	d, _ := newDeployer(t)

	_, err := d.Deploy(ctx, config.DeploySpec{Name: "MultiNFT"})
	require.ErrorIs(t, err, artifact.ErrArtifactNotFound)

	_, err = d.Deploy(ctx, config.DeploySpec{Name: "MOON", Args: []string{"1"}})
	require.ErrorIs(t, err, abiarg.ErrArgCount)

	_, err = d.Deploy(ctx, config.DeploySpec{Name: "Marketplace", Args: []string{"0x01", "0x02", "100"}})
	require.Error(t, err)
}

func TestDeployWithoutSigner(t *testing.T) {
	client, err := chain.NewSimulated(1)
	require.NoError(t, err)
	defer client.Close()

	d := New(client, artifact.NewStore(artifacttest.WriteMarketplace(t)), nil, "run")
	_, ok := d.Vars()["other"]
	assert.False(t, ok)

	c, err := d.Deploy(context.Background(), config.DeploySpec{Name: "MOON"})
	require.NoError(t, err)
	assert.Equal(t, "MOON", c.Alias)
}

func TestDeployFromSigner(t *testing.T) {
	ctx := context.Background()
	d, store := newDeployer(t)

	_, err := d.DeployFrom(ctx, config.DeploySpec{Name: "MOON"}, 1)
	require.NoError(t, err)

	records, err := store.List(ctx, config.HardhatNetwork)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, d.Vars()["other"], records[0].Deployer)

	_, err = d.DeployFrom(ctx, config.DeploySpec{Name: "MOON", Alias: "moon2"}, 2)
	require.ErrorIs(t, err, chain.ErrNoSigner)
}

func TestDeployExpandsArgsOnce(t *testing.T) {
	ctx := context.Background()
	d, store := newDeployer(t)
	d.Vars().Set("label", "${tokenName}")

	_, err := d.Deploy(ctx, config.DeploySpec{Name: "MoonNFT", Args: []string{"${label}", "MNFT", "https://ipfs.io/ipfs/"}})
	require.NoError(t, err)

	records, err := store.List(ctx, config.HardhatNetwork)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"${tokenName}", "MNFT", "https://ipfs.io/ipfs/"}, records[0].Args)
}
