package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// AccountKind selects which ledger write path a target uses.
type AccountKind string

const (
	KindCrypto AccountKind = "crypto"
	KindPay    AccountKind = "pay"
	KindPoints AccountKind = "points"
)

// Target maps a balance source onto a manual account in the ledger.
type Target struct {
	Source  string
	Account string
	Kind    AccountKind
}

type LedgerConfig struct {
	Email       string
	Password    string
	TwoFASecret string
}

type BrowserConfig struct {
	Headless    bool
	ExecPath    string
	SlowMo      time.Duration
	WaitTimeout time.Duration
}

type SourcesConfig struct {
	BinanceAPIKey    string
	BinanceSecretKey string

	BybitAPIKey    string
	BybitSecretKey string

	HyperliquidPrivateKey string

	PayPayAccessToken  string
	PayPayRefreshToken string

	PolygonAddress  string
	EtherscanAPIKey string
	PolymarketJPY   decimal.Decimal
}

type Config struct {
	Ledger      LedgerConfig
	Browser     BrowserConfig
	Debug       bool
	DebugDir    string
	SnapshotDir string
	Sources     SourcesConfig
	Targets     []Target
}

type configTmp struct {
	Ledger struct {
		Email       string `yaml:"email"`
		Password    string `yaml:"password"`
		TwoFASecret string `yaml:"twofa_secret"`
	} `yaml:"ledger"`
	Browser struct {
		Headless    *bool         `yaml:"headless"`
		ExecPath    string        `yaml:"exec_path"`
		SlowMo      time.Duration `yaml:"slow_mo"`
		WaitTimeout time.Duration `yaml:"wait_timeout"`
	} `yaml:"browser"`
	Debug       bool   `yaml:"debug"`
	DebugDir    string `yaml:"debug_dir"`
	SnapshotDir string `yaml:"snapshot_dir"`
	Sources     struct {
		Binance struct {
			APIKey    string `yaml:"api_key"`
			SecretKey string `yaml:"secret_key"`
		} `yaml:"binance"`
		Bybit struct {
			APIKey    string `yaml:"api_key"`
			SecretKey string `yaml:"secret_key"`
		} `yaml:"bybit"`
		Hyperliquid struct {
			PrivateKey string `yaml:"private_key"`
		} `yaml:"hyperliquid"`
		PayPay struct {
			AccessToken  string `yaml:"access_token"`
			RefreshToken string `yaml:"refresh_token"`
		} `yaml:"paypay"`
		Polymarket struct {
			Address         string `yaml:"address"`
			EtherscanAPIKey string `yaml:"etherscan_api_key"`
			JPYRate         string `yaml:"jpy_rate,omitempty"`
		} `yaml:"polymarket"`
	} `yaml:"sources"`
	Targets []struct {
		Source  string `yaml:"source"`
		Account string `yaml:"account"`
		Kind    string `yaml:"kind"`
	} `yaml:"targets"`
}

// Get loads configuration from the --config yaml file. Without the
// flag a default config is returned and credentials come from the
// environment variables each source falls back to.
func Get() (Config, error) {
	path := flag.String("config", "", "path to yaml config")
	flag.Parse()
	if *path == "" {
		return Default(), nil
	}
	return Load(*path)
}

// Default returns a config with sane browser defaults and no targets.
func Default() Config {
	return Config{
		Browser: BrowserConfig{Headless: true},
		Sources: SourcesConfig{PolymarketJPY: decimal.NewFromInt(150)},
	}
}

// Load parses the yaml config at path.
func Load(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp configTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, err
	}

	cfg := Default()
	cfg.Ledger = LedgerConfig{
		Email:       tmp.Ledger.Email,
		Password:    tmp.Ledger.Password,
		TwoFASecret: tmp.Ledger.TwoFASecret,
	}
	if tmp.Browser.Headless != nil {
		cfg.Browser.Headless = *tmp.Browser.Headless
	}
	cfg.Browser.ExecPath = tmp.Browser.ExecPath
	cfg.Browser.SlowMo = tmp.Browser.SlowMo
	cfg.Browser.WaitTimeout = tmp.Browser.WaitTimeout
	cfg.Debug = tmp.Debug
	cfg.DebugDir = tmp.DebugDir
	cfg.SnapshotDir = tmp.SnapshotDir

	cfg.Sources.BinanceAPIKey = tmp.Sources.Binance.APIKey
	cfg.Sources.BinanceSecretKey = tmp.Sources.Binance.SecretKey
	cfg.Sources.BybitAPIKey = tmp.Sources.Bybit.APIKey
	cfg.Sources.BybitSecretKey = tmp.Sources.Bybit.SecretKey
	cfg.Sources.HyperliquidPrivateKey = tmp.Sources.Hyperliquid.PrivateKey
	cfg.Sources.PayPayAccessToken = tmp.Sources.PayPay.AccessToken
	cfg.Sources.PayPayRefreshToken = tmp.Sources.PayPay.RefreshToken
	cfg.Sources.PolygonAddress = tmp.Sources.Polymarket.Address
	cfg.Sources.EtherscanAPIKey = tmp.Sources.Polymarket.EtherscanAPIKey
	if tmp.Sources.Polymarket.JPYRate != "" {
		rate, err := decimal.NewFromString(tmp.Sources.Polymarket.JPYRate)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'jpy_rate' param in yaml config (must be a decimal): %w", err)
		}
		cfg.Sources.PolymarketJPY = rate
	}

	for _, t := range tmp.Targets {
		if t.Source == "" || t.Account == "" {
			return Config{}, fmt.Errorf("target requires both 'source' and 'account'")
		}
		kind := AccountKind(t.Kind)
		switch kind {
		case KindCrypto, KindPay, KindPoints:
		case "":
			kind = KindCrypto
		default:
			return Config{}, fmt.Errorf("incorrect 'kind' param for target %s: %q", t.Source, t.Kind)
		}
		cfg.Targets = append(cfg.Targets, Target{Source: t.Source, Account: t.Account, Kind: kind})
	}

	return cfg, nil
}
