package setup

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// fileConfig mirrors the yaml layout config.Load expects.
type fileConfig struct {
	Ledger struct {
		Email       string `yaml:"email"`
		Password    string `yaml:"password"`
		TwoFASecret string `yaml:"twofa_secret,omitempty"`
	} `yaml:"ledger"`
	Browser struct {
		Headless bool   `yaml:"headless"`
		ExecPath string `yaml:"exec_path,omitempty"`
	} `yaml:"browser"`
	Debug   bool `yaml:"debug"`
	Sources struct {
		Binance *struct {
			APIKey    string `yaml:"api_key"`
			SecretKey string `yaml:"secret_key"`
		} `yaml:"binance,omitempty"`
		Bybit *struct {
			APIKey    string `yaml:"api_key"`
			SecretKey string `yaml:"secret_key"`
		} `yaml:"bybit,omitempty"`
		Hyperliquid *struct {
			PrivateKey string `yaml:"private_key"`
		} `yaml:"hyperliquid,omitempty"`
		PayPay *struct {
			AccessToken  string `yaml:"access_token"`
			RefreshToken string `yaml:"refresh_token"`
		} `yaml:"paypay,omitempty"`
		Polymarket *struct {
			Address         string `yaml:"address"`
			EtherscanAPIKey string `yaml:"etherscan_api_key"`
		} `yaml:"polymarket,omitempty"`
	} `yaml:"sources"`
	Targets []fileTarget `yaml:"targets"`
}

type fileTarget struct {
	Source  string `yaml:"source"`
	Account string `yaml:"account"`
	Kind    string `yaml:"kind"`
}

// RunTUI launches the terminal configuration wizard.
func RunTUI() error {
	var (
		email       string
		password    string
		twofaSecret string
		headless    = true
		execPath    string
		debug       bool
		enabled     []string
		confirm     bool
	)

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("ZANSYNC CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Let's wire your balances into the ledger.\n"))

	fmt.Println(stepStyle.Render("STEP 1: LEDGER LOGIN"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Moneyforward Email").
				Value(&email).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("email cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Moneyforward Password").
				Value(&password).
				EchoMode(huh.EchoModePassword),
			huh.NewInput().
				Title("TOTP Secret").
				Description("Leave empty if two-factor auth is disabled").
				Value(&twofaSecret).
				EchoMode(huh.EchoModePassword),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("ZANSYNC CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: BROWSER"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Run the browser headless?").
				Value(&headless),
			huh.NewInput().
				Title("Chromium Binary Path").
				Description("Leave empty to use the bundled Chrome lookup").
				Value(&execPath),
			huh.NewConfirm().
				Title("Capture debug snapshots on failure?").
				Value(&debug),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("ZANSYNC CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: SOURCES"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Select balance sources to sync").
				Options(
					huh.NewOption("Binance", "binance"),
					huh.NewOption("Bybit", "bybit"),
					huh.NewOption("Hyperliquid", "hyperliquid"),
					huh.NewOption("PayPay", "paypay"),
					huh.NewOption("Polymarket", "polymarket"),
				).
				Value(&enabled),
		),
	).Run()
	if err != nil {
		return err
	}

	var cfg fileConfig
	cfg.Ledger.Email = email
	cfg.Ledger.Password = password
	cfg.Ledger.TwoFASecret = twofaSecret
	cfg.Browser.Headless = headless
	cfg.Browser.ExecPath = execPath
	cfg.Debug = debug

	for _, source := range enabled {
		if err := promptSource(&cfg, source); err != nil {
			return err
		}
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("ZANSYNC CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"Email: %s\nHeadless: %t\nDebug: %t\nSources: %d\nTargets: %d\n",
		email, headless, debug, len(enabled), len(cfg.Targets),
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	filename := "config.gen.yaml"
	if err := os.WriteFile(filename, data, 0600); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s", filename)))
	time.Sleep(1500 * time.Millisecond)
	return nil
}

// promptSource collects credentials and the target mapping for one source.
func promptSource(cfg *fileConfig, source string) error {
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("ZANSYNC CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("SOURCE: " + source))

	var fields []huh.Field
	var key, secret, account string
	kind := "crypto"

	switch source {
	case "binance", "bybit":
		fields = append(fields,
			huh.NewInput().Title("API Key").Value(&key),
			huh.NewInput().Title("Secret Key").Value(&secret).EchoMode(huh.EchoModePassword),
		)
	case "hyperliquid":
		fields = append(fields,
			huh.NewInput().Title("Private Key").Value(&key).EchoMode(huh.EchoModePassword),
		)
	case "paypay":
		kind = "pay"
		fields = append(fields,
			huh.NewInput().Title("Access Token").Value(&key).EchoMode(huh.EchoModePassword),
			huh.NewInput().Title("Refresh Token").Value(&secret).EchoMode(huh.EchoModePassword),
		)
	case "polymarket":
		kind = "points"
		fields = append(fields,
			huh.NewInput().
				Title("Polygon Address").
				Value(&key).
				Validate(func(s string) error {
					if !common.IsHexAddress(s) {
						return fmt.Errorf("must be a 0x-prefixed hex address")
					}
					return nil
				}),
			huh.NewInput().Title("Etherscan API Key").Value(&secret),
		)
	}

	fields = append(fields,
		huh.NewInput().
			Title("Ledger Account").
			Description("Manual account name (or its direct URL) in Moneyforward").
			Value(&account).
			Validate(func(s string) error {
				if s == "" {
					return fmt.Errorf("account cannot be empty")
				}
				return nil
			}),
		huh.NewSelect[string]().
			Title("Write Mode").
			Options(
				huh.NewOption("Crypto asset rows", "crypto"),
				huh.NewOption("Single pay balance", "pay"),
				huh.NewOption("Single points balance", "points"),
			).
			Value(&kind),
	)

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return err
	}

	switch source {
	case "binance":
		cfg.Sources.Binance = &struct {
			APIKey    string `yaml:"api_key"`
			SecretKey string `yaml:"secret_key"`
		}{APIKey: key, SecretKey: secret}
	case "bybit":
		cfg.Sources.Bybit = &struct {
			APIKey    string `yaml:"api_key"`
			SecretKey string `yaml:"secret_key"`
		}{APIKey: key, SecretKey: secret}
	case "hyperliquid":
		cfg.Sources.Hyperliquid = &struct {
			PrivateKey string `yaml:"private_key"`
		}{PrivateKey: key}
	case "paypay":
		cfg.Sources.PayPay = &struct {
			AccessToken  string `yaml:"access_token"`
			RefreshToken string `yaml:"refresh_token"`
		}{AccessToken: key, RefreshToken: secret}
	case "polymarket":
		cfg.Sources.Polymarket = &struct {
			Address         string `yaml:"address"`
			EtherscanAPIKey string `yaml:"etherscan_api_key"`
		}{Address: key, EtherscanAPIKey: secret}
	}

	cfg.Targets = append(cfg.Targets, fileTarget{Source: source, Account: account, Kind: kind})
	return nil
}
