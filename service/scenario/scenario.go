package scenario

import (
	"context"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/DarkHorse0725/NFT-marketplace/logger/xzap"
	"github.com/DarkHorse0725/NFT-marketplace/service/abiarg"
	"github.com/DarkHorse0725/NFT-marketplace/service/chain"
	"github.com/DarkHorse0725/NFT-marketplace/service/config"
	"github.com/DarkHorse0725/NFT-marketplace/service/deployer"
)

const (
	KindDeploy = "deploy" // 部署合约
	KindCall   = "call"   // 只读调用，结果可保存为变量
	KindSend   = "send"   // 发送交易并等待回执
)

var (
	ErrNotEnoughSigners = errors.New("not enough signers")
	ErrUnknownSigner    = errors.New("unknown signer")
	ErrUnknownMethod    = errors.New("unknown method")
	ErrUnknownKind      = errors.New("unknown step kind")
)

// Result 每一步的执行结果
type Result struct {
	Index    int
	Kind     string
	Contract string
	Method   string
	From     string
	Address  string   // deploy 得到的合约地址
	TxHash   string   // deploy / send 的交易哈希
	Outputs  []string // call 的返回值
}

// Runner 顺序执行流程，每一步都等待完成后才进行下一步
type Runner struct {
	deployer *deployer.Deployer
}

func New(d *deployer.Deployer) *Runner {
	return &Runner{deployer: d}
}

// Run 执行全部步骤，遇到失败立即返回已完成的结果和错误
func (r *Runner) Run(ctx context.Context, steps []config.StepSpec) ([]Result, error) {
	// 先检查签名账户是否足够，避免执行到一半才失败
	have := len(r.deployer.Client().Signers())
	for i, s := range steps {
		idx, err := signerIndex(s.From)
		if err != nil {
			return nil, errors.Wrapf(err, "step %d", i)
		}
		if idx >= have {
			return nil, errors.Wrapf(ErrNotEnoughSigners, "step %d uses %q, have %d accounts", i, s.From, have)
		}
	}

	results := make([]Result, 0, len(steps))
	for i, s := range steps {
		res, err := r.step(ctx, i, s)
		if err != nil {
			return results, errors.Wrapf(err, "step %d (%s %s.%s)", i, s.Kind, s.Contract, s.Method)
		}
		results = append(results, res)
	}
	return results, nil
}

func (r *Runner) step(ctx context.Context, i int, s config.StepSpec) (Result, error) {
	res := Result{Index: i, Kind: s.Kind, Contract: s.Contract, Method: s.Method, From: s.From}
	switch s.Kind {
	case KindDeploy:
		idx, _ := signerIndex(s.From)
		c, err := r.deployer.DeployFrom(ctx, config.DeploySpec{Name: s.Contract, Alias: s.Alias, Args: s.Args}, idx)
		if err != nil {
			return res, err
		}
		res.Address = c.Address.Hex()
		res.TxHash = c.TxHash.Hex()
		return res, nil
	case KindCall:
		return r.call(ctx, res, s)
	case KindSend:
		return r.send(ctx, res, s)
	default:
		return res, errors.Wrapf(ErrUnknownKind, "%q", s.Kind)
	}
}

func (r *Runner) prepare(ctx context.Context, s config.StepSpec) (*deployer.Contract, []interface{}, *bind.TransactOpts, error) {
	c, err := r.deployer.Contract(s.Contract)
	if err != nil {
		return nil, nil, nil, err
	}
	method, ok := c.ABI.Methods[s.Method]
	if !ok {
		return nil, nil, nil, errors.Wrapf(ErrUnknownMethod, "%s.%s", c.Name, s.Method)
	}
	args, err := abiarg.Convert(method.Inputs, s.Args, r.deployer.Vars())
	if err != nil {
		return nil, nil, nil, err
	}
	idx, _ := signerIndex(s.From)
	opts, err := r.deployer.Client().TransactOpts(ctx, idx)
	if err != nil {
		return nil, nil, nil, err
	}
	return c, args, opts, nil
}

func (r *Runner) call(ctx context.Context, res Result, s config.StepSpec) (Result, error) {
	c, args, opts, err := r.prepare(ctx, s)
	if err != nil {
		return res, err
	}

	var out []interface{}
	if err := c.Bound.Call(&bind.CallOpts{Context: ctx, From: opts.From}, &out, s.Method, args...); err != nil {
		return res, errors.Wrapf(err, "failed on call %s.%s", c.Alias, s.Method)
	}
	for _, v := range out {
		res.Outputs = append(res.Outputs, abiarg.Format(v))
	}

	if s.Save != "" {
		vars := r.deployer.Vars()
		if len(res.Outputs) == 1 {
			vars.Set(s.Save, res.Outputs[0])
		} else {
			for j, v := range res.Outputs {
				vars.Set(s.Save+"."+strconv.Itoa(j), v)
			}
		}
	}

	xzap.WithContext(ctx).Info("call",
		zap.String("contract", c.Alias),
		zap.String("method", s.Method),
		zap.Strings("outputs", res.Outputs),
		zap.String("save", s.Save))
	return res, nil
}

func (r *Runner) send(ctx context.Context, res Result, s config.StepSpec) (Result, error) {
	c, args, opts, err := r.prepare(ctx, s)
	if err != nil {
		return res, err
	}

	tx, err := c.Bound.Transact(opts, s.Method, args...)
	if err != nil {
		return res, errors.Wrapf(err, "failed on send %s.%s", c.Alias, s.Method)
	}
	receipt, err := chain.WaitSuccess(ctx, r.deployer.Client().Backend, tx)
	if err != nil {
		return res, err
	}
	res.TxHash = tx.Hash().Hex()

	xzap.WithContext(ctx).Info("send",
		zap.String("contract", c.Alias),
		zap.String("method", s.Method),
		zap.String("from", opts.From.Hex()),
		zap.String("tx_hash", res.TxHash),
		zap.Uint64("block", receipt.BlockNumber.Uint64()))
	return res, nil
}

// signerIndex owner / other / signerN 对应的账户下标，空字符串为 owner
func signerIndex(name string) (int, error) {
	if name == "" {
		return 0, nil
	}
	for i, n := range deployer.SignerNames {
		if n == name {
			return i, nil
		}
	}
	if rest, ok := strings.CutPrefix(name, "signer"); ok {
		if i, err := strconv.Atoi(rest); err == nil && i >= 0 {
			return i, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownSigner, "%q", name)
}
