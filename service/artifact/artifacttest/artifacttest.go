// Package artifacttest 为测试生成 Hardhat 格式的 artifacts
package artifacttest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// StubBytecode 部署后的合约对任何调用都返回 32 字节的 0
// init: CODECOPY 运行时代码 (5 字节) 并 RETURN；runtime: PUSH1 32 PUSH1 0 RETURN
const StubBytecode = "0x6005600c60003960056000f360206000f3"

const (
	MoonABI = `[
		{"inputs":[],"stateMutability":"nonpayable","type":"constructor"},
		{"inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"},
		{"inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"},
		{"inputs":[{"name":"account","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
	]`
	MoonNFTABI = `[
		{"inputs":[{"name":"name","type":"string"},{"name":"symbol","type":"string"},{"name":"baseURI","type":"string"}],"stateMutability":"nonpayable","type":"constructor"},
		{"inputs":[],"name":"MINTER_ROLE","outputs":[{"name":"","type":"bytes32"}],"stateMutability":"view","type":"function"},
		{"inputs":[{"name":"role","type":"bytes32"},{"name":"account","type":"address"}],"name":"grantRole","outputs":[],"stateMutability":"nonpayable","type":"function"},
		{"inputs":[{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"}],"name":"approve","outputs":[],"stateMutability":"nonpayable","type":"function"}
	]`
	MarketplaceABI = `[
		{"inputs":[{"name":"nft","type":"address"},{"name":"token","type":"address"},{"name":"fee","type":"uint256"}],"stateMutability":"nonpayable","type":"constructor"},
		{"inputs":[{"name":"id","type":"string"},{"name":"name","type":"string"},{"name":"price","type":"uint256"},{"name":"supply","type":"uint256"},{"name":"uri","type":"string"}],"name":"addNewProduction","outputs":[],"stateMutability":"nonpayable","type":"function"},
		{"inputs":[{"name":"to","type":"address"},{"name":"id","type":"string"},{"name":"amount","type":"uint256"}],"name":"buy","outputs":[],"stateMutability":"nonpayable","type":"function"}
	]`
	AuctionABI = `[
		{"inputs":[{"name":"nft","type":"address"},{"name":"token","type":"address"},{"name":"feeToken","type":"address"},{"name":"cut","type":"uint256"}],"stateMutability":"nonpayable","type":"constructor"},
		{"inputs":[{"name":"feeAddress","type":"address"}],"name":"setFeeAddress","outputs":[],"stateMutability":"nonpayable","type":"function"},
		{"inputs":[{"name":"tokenId","type":"uint256"},{"name":"startingPrice","type":"uint256"},{"name":"endingPrice","type":"uint256"},{"name":"amount","type":"uint256"},{"name":"duration","type":"uint256"},{"name":"seller","type":"address"},{"name":"nft","type":"address"}],"name":"createAuction","outputs":[],"stateMutability":"nonpayable","type":"function"},
		{"inputs":[{"name":"nft","type":"address"},{"name":"tokenId","type":"uint256"},{"name":"amount","type":"uint256"}],"name":"bid","outputs":[],"stateMutability":"nonpayable","type":"function"},
		{"inputs":[{"name":"nft","type":"address"},{"name":"tokenId","type":"uint256"},{"name":"bidder","type":"address"}],"name":"accept","outputs":[],"stateMutability":"nonpayable","type":"function"}
	]`
)

// Artifact 一份 Hardhat artifact
type Artifact struct {
	Format           string          `json:"_format"`
	ContractName     string          `json:"contractName"`
	SourceName       string          `json:"sourceName"`
	ABI              json.RawMessage `json:"abi"`
	Bytecode         string          `json:"bytecode"`
	DeployedBytecode string          `json:"deployedBytecode"`
	LinkReferences   map[string]any  `json:"linkReferences"`
}

// Write 写入 <root>/contracts/<source>/<name>.json 和对应的 dbg 文件
func Write(t testing.TB, root, source, name, abiJSON, bytecode string) string {
	t.Helper()
	dir := filepath.Join(root, "contracts", source)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	data, err := json.Marshal(Artifact{
		Format:           "hh-sol-artifact-1",
		ContractName:     name,
		SourceName:       "contracts/" + source,
		ABI:              json.RawMessage(abiJSON),
		Bytecode:         bytecode,
		DeployedBytecode: "0x60206000f3",
		LinkReferences:   map[string]any{},
	})
	require.NoError(t, err)

	path := filepath.Join(dir, name+".json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".dbg.json"),
		[]byte(`{"_format":"hh-sol-dbg-1","buildInfo":"../../build-info/x.json"}`), 0o644))
	return path
}

// WriteMarketplace 写入市场流程用到的四个合约，返回 artifacts 根目录
func WriteMarketplace(t testing.TB) string {
	t.Helper()
	root := t.TempDir()
	Write(t, root, "MOON.sol", "MOON", MoonABI, StubBytecode)
	Write(t, root, "MoonNFT.sol", "MoonNFT", MoonNFTABI, StubBytecode)
	Write(t, root, "Marketplace.sol", "Marketplace", MarketplaceABI, StubBytecode)
	Write(t, root, "SaleClockAuction.sol", "SaleClockAuction", AuctionABI, StubBytecode)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "build-info"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "build-info", "x.json"), []byte(`{}`), 0o644))
	return root
}
