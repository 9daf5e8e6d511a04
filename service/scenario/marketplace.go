package scenario

import "github.com/DarkHorse0725/NFT-marketplace/service/config"

// DefaultMarketplace 市场/拍卖完整流程:
// 部署四个合约 -> 授权 -> 上架商品并购买 (铸造 NFT #0) -> 创建拍卖 -> other 出价 -> owner 接受
func DefaultMarketplace() []config.StepSpec {
	return []config.StepSpec{
		// 部署
		{Kind: KindDeploy, Contract: "MOON", Alias: "moon"},
		{Kind: KindDeploy, Contract: "MoonNFT", Alias: "moonNFT", Args: []string{"MoonNFT", "MoonNFT", "https://ipfs.io/ipfs/"}},
		{Kind: KindDeploy, Contract: "Marketplace", Alias: "marketplace", Args: []string{"${moonNFT}", "${moon}", "100"}},
		{Kind: KindDeploy, Contract: "SaleClockAuction", Alias: "auction", Args: []string{"${moonNFT}", "${moon}", "${moon}", "12"}},

		// 手续费地址、铸造权限、给 other 转 MOON
		{Kind: KindSend, From: "owner", Contract: "auction", Method: "setFeeAddress", Args: []string{"${owner}"}},
		{Kind: KindCall, From: "owner", Contract: "moonNFT", Method: "MINTER_ROLE", Save: "minterRole"},
		{Kind: KindSend, From: "owner", Contract: "moonNFT", Method: "grantRole", Args: []string{"${minterRole}", "${marketplace}"}},
		{Kind: KindSend, From: "owner", Contract: "moon", Method: "transfer", Args: []string{"${other}", "100000e18"}},

		// 商品
		{Kind: KindSend, From: "owner", Contract: "marketplace", Method: "addNewProduction", Args: []string{"1", "1", "100", "10", "1"}},
		{Kind: KindSend, From: "owner", Contract: "marketplace", Method: "addNewProduction", Args: []string{"2", "2", "200", "10", "2"}},
		{Kind: KindSend, From: "owner", Contract: "marketplace", Method: "addNewProduction", Args: []string{"3", "3", "300", "10", "3"}},

		// 购买
		{Kind: KindSend, From: "owner", Contract: "moon", Method: "approve", Args: []string{"${marketplace}", "100e18"}},
		{Kind: KindSend, From: "owner", Contract: "marketplace", Method: "buy", Args: []string{"${owner}", "1", "100e18"}},

		// 拍卖
		{Kind: KindSend, From: "owner", Contract: "moonNFT", Method: "approve", Args: []string{"${auction}", "0"}},
		{Kind: KindSend, From: "owner", Contract: "auction", Method: "createAuction",
			Args: []string{"0", "10e18", "100e18", "1", "86400", "${owner}", "${moonNFT}"}},
		{Kind: KindSend, From: "other", Contract: "moon", Method: "approve", Args: []string{"${auction}", "100e18"}},
		{Kind: KindSend, From: "other", Contract: "auction", Method: "bid", Args: []string{"${moonNFT}", "0", "100e18"}},
		{Kind: KindSend, From: "owner", Contract: "auction", Method: "accept", Args: []string{"${moonNFT}", "0", "${other}"}},
	}
}
