// Command zansync fetches balances from the configured sources and
// writes them into the Moneyforward ledger through an automated
// browser session.
//
// Usage:
//
//	zansync --config config.yaml
//	zansync setup
//
// Credentials left out of the config file come from environment
// variables: MONEYFORWARD_USER, MONEYFORWARD_PASSWORD,
// MONEYFORWARD_2FA_SECRET, BINANCE_API_KEY, BINANCE_SECRET_KEY,
// BYBIT_API_KEY, BYBIT_API_SECRET, HYPERLIQUID_PRIVATE_KEY,
// PAYPAY_ACCESS_TOKEN, PAYPAY_REFRESH_TOKEN, POLYGON_ADDRESS,
// POLYSCAN_API_KEY, CHROMIUM_BINARY_PATH.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/zansync/zansync/config"
	"github.com/zansync/zansync/internal/browser"
	"github.com/zansync/zansync/internal/domain"
	"github.com/zansync/zansync/internal/ledger"
	"github.com/zansync/zansync/internal/rates"
	"github.com/zansync/zansync/internal/setup"
	"github.com/zansync/zansync/internal/sources"
	binancesource "github.com/zansync/zansync/internal/sources/binance"
	bybitsource "github.com/zansync/zansync/internal/sources/bybit"
	hyperliquidsource "github.com/zansync/zansync/internal/sources/hyperliquid"
	paypaysource "github.com/zansync/zansync/internal/sources/paypay"
	polymarketsource "github.com/zansync/zansync/internal/sources/polymarket"
	"github.com/zansync/zansync/internal/storage/snapshots"
	"github.com/zansync/zansync/pkg/retrier"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "setup" {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		return
	}

	// .env is optional, real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Fatal("sync failed", zap.Error(err))
	}

	fmt.Println("Done!")
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	srcs, err := buildSources(cfg.Sources)
	if err != nil {
		return err
	}

	store, err := snapshots.NewWALStore(cfg.SnapshotDir)
	if err != nil {
		return errors.Wrap(err, "open snapshot store")
	}
	defer store.Close()

	account := ledger.NewCashAccount(ledger.Config{
		Email:       cfg.Ledger.Email,
		Password:    cfg.Ledger.Password,
		TwoFASecret: cfg.Ledger.TwoFASecret,
		Debug:       cfg.Debug,
		DebugDir:    cfg.DebugDir,
		Browser: browser.Options{
			Headless:    cfg.Browser.Headless,
			ExecPath:    cfg.Browser.ExecPath,
			NoSandbox:   true,
			WaitTimeout: cfg.Browser.WaitTimeout,
			SlowMo:      cfg.Browser.SlowMo,
		},
	}, logger)
	defer func() {
		if err := account.Finalize(); err != nil {
			logger.Warn("failed to close browser", zap.Error(err))
		}
	}()

	r := retrier.New(retrier.WithMaxRetries(3))

	for _, target := range cfg.Targets {
		src, ok := srcs[target.Source]
		if !ok {
			logger.Warn("target references a source without credentials, skipping",
				zap.String("source", target.Source))
			continue
		}

		log := logger.With(
			zap.String("source", target.Source),
			zap.String("account", target.Account))

		if err := syncTarget(ctx, r, store, account, src, target, log); err != nil {
			return err
		}
	}

	return nil
}

// syncTarget fetches one source and writes it into its ledger account.
// Fetch failures skip the target so one dead API does not abort the
// whole run; ledger write failures abort.
func syncTarget(ctx context.Context, r *retrier.Retrier, store *snapshots.WALStore,
	account *ledger.CashAccount, src sources.Source, target config.Target, log *zap.Logger) error {

	switch target.Kind {
	case config.KindCrypto:
		assets, err := retrier.DoWithData(r, ctx, src.FetchAll)
		if errors.Is(err, sources.ErrUnsupported) {
			log.Warn("source has no asset breakdown, skipping")
			return nil
		}
		if err != nil {
			log.Error("fetch failed, skipping source", zap.Error(err))
			return nil
		}
		total := sources.SumAssets(assets)
		saveSnapshot(store, domain.NewBalanceSnapshot(src.Name(), total.String(), assets), log)

		log.Info("writing asset rows", zap.Int("assets", len(assets)), zap.String("total", total.String()))
		return account.UpdateCryptoBalance(ctx, target.Account, assets)

	case config.KindPay, config.KindPoints:
		balance, err := retrier.DoWithData(r, ctx, src.Fetch)
		if err != nil {
			log.Error("fetch failed, skipping source", zap.Error(err))
			return nil
		}
		saveSnapshot(store, domain.NewBalanceSnapshot(src.Name(), balance.String(), nil), log)

		log.Info("writing balance", zap.String("balance", balance.String()))
		if target.Kind == config.KindPay {
			return account.UpdatePayBalance(ctx, target.Account, balance)
		}
		return account.UpdatePointsBalance(ctx, target.Account, balance)

	default:
		return errors.Errorf("unknown target kind %q", target.Kind)
	}
}

func saveSnapshot(store *snapshots.WALStore, snap domain.BalanceSnapshot, log *zap.Logger) {
	if err := store.Save(snap); err != nil {
		log.Warn("failed to persist balance snapshot", zap.Error(err))
	}
}

// buildSources constructs a source per credential block present in the
// config. Sources relying on environment fallbacks are built lazily by
// their constructors, so empty blocks are simply absent here.
func buildSources(cfg config.SourcesConfig) (map[string]sources.Source, error) {
	srcs := make(map[string]sources.Source)
	usdjpy := rates.NewHTTPProvider()

	if cfg.BinanceAPIKey != "" || os.Getenv("BINANCE_API_KEY") != "" {
		srcs["binance"] = binancesource.New(cfg.BinanceAPIKey, cfg.BinanceSecretKey, usdjpy)
	}
	if cfg.BybitAPIKey != "" || os.Getenv("BYBIT_API_KEY") != "" {
		srcs["bybit"] = bybitsource.New(cfg.BybitAPIKey, cfg.BybitSecretKey, usdjpy)
	}
	if cfg.HyperliquidPrivateKey != "" || os.Getenv("HYPERLIQUID_PRIVATE_KEY") != "" {
		src, err := hyperliquidsource.New(cfg.HyperliquidPrivateKey, "", usdjpy)
		if err != nil {
			return nil, errors.Wrap(err, "init hyperliquid source")
		}
		srcs["hyperliquid"] = src
	}
	if cfg.PayPayAccessToken != "" || os.Getenv("PAYPAY_ACCESS_TOKEN") != "" {
		srcs["paypay"] = paypaysource.New(paypaysource.Config{
			AccessToken:  cfg.PayPayAccessToken,
			RefreshToken: cfg.PayPayRefreshToken,
		})
	}
	if cfg.PolygonAddress != "" || os.Getenv("POLYGON_ADDRESS") != "" {
		src, err := polymarketsource.New(polymarketsource.Config{
			Address:         cfg.PolygonAddress,
			EtherscanAPIKey: cfg.EtherscanAPIKey,
		}, rates.Fixed(cfg.PolymarketJPY))
		if err != nil {
			return nil, errors.Wrap(err, "init polymarket source")
		}
		srcs["polymarket"] = src
	}

	return srcs, nil
}
