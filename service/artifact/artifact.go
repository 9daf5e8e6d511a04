package artifact

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/mr"
	"github.com/zeromicro/go-zero/core/syncx"
)

const (
	buildInfoDir = "build-info"
	debugSuffix  = ".dbg.json"
)

var (
	ErrArtifactNotFound  = errors.New("artifact not found")
	ErrAmbiguousArtifact = errors.New("ambiguous artifact name")
	ErrNoBytecode        = errors.New("artifact has no bytecode")
	ErrUnlinkedLibrary   = errors.New("artifact has unlinked libraries")
)

// hardhatArtifact Hardhat 编译产物 (hh-sol-artifact-1) 中用到的字段
type hardhatArtifact struct {
	Format           string                     `json:"_format"`
	ContractName     string                     `json:"contractName"`
	SourceName       string                     `json:"sourceName"`
	ABI              json.RawMessage            `json:"abi"`
	Bytecode         string                     `json:"bytecode"`
	DeployedBytecode string                     `json:"deployedBytecode"`
	LinkReferences   map[string]json.RawMessage `json:"linkReferences"`
}

// Factory 合约工厂: ABI + 创建字节码
type Factory struct {
	Name             string
	SourceName       string
	ABI              abi.ABI
	RawABI           json.RawMessage
	Bytecode         []byte
	DeployedBytecode []byte
}

// FromJSON 解析一份 Hardhat artifact
func FromJSON(data []byte) (*Factory, error) {
	var a hardhatArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, errors.Wrap(err, "failed on decode artifact")
	}
	if a.ContractName == "" {
		return nil, errors.New("artifact has no contractName")
	}

	parsed, err := abi.JSON(bytes.NewReader(a.ABI))
	if err != nil {
		return nil, errors.Wrapf(err, "failed on parse abi of %s", a.ContractName)
	}

	f := &Factory{
		Name:       a.ContractName,
		SourceName: a.SourceName,
		ABI:        parsed,
		RawABI:     a.ABI,
	}
	if len(a.LinkReferences) > 0 {
		return f, errors.Wrapf(ErrUnlinkedLibrary, "%s", a.ContractName)
	}
	if f.Bytecode, err = decodeHex(a.Bytecode); err != nil {
		return f, errors.Wrapf(err, "bytecode of %s", a.ContractName)
	}
	if f.DeployedBytecode, err = decodeHex(a.DeployedBytecode); err != nil {
		return f, errors.Wrapf(err, "deployed bytecode of %s", a.ContractName)
	}
	return f, nil
}

// Deployable 接口和抽象合约没有字节码，不能部署
func (f *Factory) Deployable() error {
	if len(f.Bytecode) == 0 {
		return errors.Wrapf(ErrNoBytecode, "%s", f.Name)
	}
	return nil
}

func decodeHex(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	return hexutil.Decode(s)
}

// Store 按合约名查找 artifacts 目录下的合约工厂
type Store struct {
	root   string
	flight syncx.SingleFlight

	mu    sync.Mutex
	cache map[string]*Factory
}

func NewStore(root string) *Store {
	return &Store{
		root:   root,
		flight: syncx.NewSingleFlight(),
		cache:  make(map[string]*Factory),
	}
}

// Root artifacts 根目录
func (s *Store) Root() string {
	return s.root
}

// Factory 按名称获取合约工厂
// name 可以是合约名 (MOON) 或完整名 (contracts/MOON.sol:MOON)
func (s *Store) Factory(name string) (*Factory, error) {
	s.mu.Lock()
	f, ok := s.cache[name]
	s.mu.Unlock()
	if ok {
		return f, nil
	}

	v, err := s.flight.Do(name, func() (any, error) {
		path, err := s.locate(name)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed on read artifact %s", path)
		}
		f, err := FromJSON(data)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cache[name] = f
		s.mu.Unlock()
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Factory), nil
}

// Preload 并发加载 names 对应的合约工厂并检查都可以部署
// 重复的名称只读取一次
func (s *Store) Preload(names ...string) error {
	fns := make([]func() error, 0, len(names))
	for _, name := range names {
		name := name
		fns = append(fns, func() error {
			f, err := s.Factory(name)
			if err != nil {
				return err
			}
			return f.Deployable()
		})
	}
	return mr.Finish(fns...)
}

func (s *Store) locate(name string) (string, error) {
	if source, contract, ok := strings.Cut(name, ":"); ok {
		path := filepath.Join(s.root, filepath.FromSlash(source), contract+".json")
		if _, err := os.Stat(path); err != nil {
			return "", errors.Wrapf(ErrArtifactNotFound, "%s", name)
		}
		return path, nil
	}

	target := name + ".json"
	var matches []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == buildInfoDir {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == target && !strings.HasSuffix(d.Name(), debugSuffix) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed on walk artifacts %s", s.root)
	}

	switch len(matches) {
	case 0:
		return "", errors.Wrapf(ErrArtifactNotFound, "%s in %s", name, s.root)
	case 1:
		return matches[0], nil
	default:
		return "", errors.Wrapf(ErrAmbiguousArtifact, "%s: %s", name, strings.Join(matches, ", "))
	}
}
