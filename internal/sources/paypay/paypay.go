// Package paypay reports wallet balances from the PayPay mobile API: the
// same private BFF endpoints the phone app talks to, authenticated with
// a bearer token that is refreshed at the start of every fetch.
package paypay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/zansync/zansync/internal/domain"
)

const (
	defaultBaseURL = "https://app4.paypay.ne.jp"
	oauthClientID  = "pay2-mobile-app-client"

	// pinned app version; the BFF only checks that the header is present
	// and plausibly recent.
	appVersion = "4.69.0"

	resultOK = "S0000"
)

// credential result codes that mean the refresh token itself is dead.
var credentialErrorCodes = map[string]bool{"S0001": true, "S0003": true, "S1003": true}

type Config struct {
	AccessToken  string
	RefreshToken string
}

type Source struct {
	cfg     Config
	client  *http.Client
	baseURL string

	deviceUUID  string
	clientUUID  string
	accessToken string
}

// New builds a source from mobile-app tokens, falling back to the
// PAYPAY_ACCESS_TOKEN / PAYPAY_REFRESH_TOKEN environment variables.
func New(cfg Config) *Source {
	if cfg.AccessToken == "" {
		cfg.AccessToken = os.Getenv("PAYPAY_ACCESS_TOKEN")
	}
	if cfg.RefreshToken == "" {
		cfg.RefreshToken = os.Getenv("PAYPAY_REFRESH_TOKEN")
	}
	return &Source{
		cfg:         cfg,
		client:      http.DefaultClient,
		baseURL:     defaultBaseURL,
		deviceUUID:  strings.ToUpper(uuid.New().String()),
		clientUUID:  strings.ToUpper(uuid.New().String()),
		accessToken: cfg.AccessToken,
	}
}

func (s *Source) Name() string { return "paypay" }

// apiHeader is the envelope every BFF response carries.
type apiHeader struct {
	ResultCode    string `json:"resultCode"`
	ResultMessage string `json:"resultMessage"`
}

type refreshResponse struct {
	Header  apiHeader `json:"header"`
	Payload struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	} `json:"payload"`
}

type balanceAmount struct {
	Balance decimal.Decimal `json:"balance"`
}

type balanceResponse struct {
	Header  apiHeader `json:"header"`
	Payload struct {
		WalletSummary struct {
			AllTotalBalanceInfo balanceAmount `json:"allTotalBalanceInfo"`
		} `json:"walletSummary"`
		WalletDetail struct {
			EmoneyBalanceInfo   *balanceAmount `json:"emoneyBalanceInfo"`
			PrepaidBalanceInfo  balanceAmount  `json:"prepaidBalanceInfo"`
			CashBackBalanceInfo balanceAmount  `json:"cashBackBalanceInfo"`
		} `json:"walletDetail"`
	} `json:"payload"`
}

type pointHistoryResponse struct {
	Header  apiHeader `json:"header"`
	Payload struct {
		PointDetails struct {
			InvestmentAssets struct {
				ValuationAmount decimal.Decimal `json:"valuationAmount"`
			} `json:"investmentAssets"`
		} `json:"pointDetails"`
	} `json:"payload"`
}

func (s *Source) Fetch(ctx context.Context) (decimal.Decimal, error) {
	if err := s.refresh(ctx); err != nil {
		return decimal.Zero, err
	}
	var body balanceResponse
	if err := s.get(ctx, "/bff/v2/getBalanceInfo", &body, &body.Header); err != nil {
		return decimal.Zero, err
	}
	return body.Payload.WalletSummary.AllTotalBalanceInfo.Balance, nil
}

// FetchAll splits the wallet into its taxonomies: money, money light,
// points and the valuation of points put into the investment feature.
// All four are always reported, zeros included, so the ledger rows keep
// existing when a bucket empties out.
func (s *Source) FetchAll(ctx context.Context) ([]domain.Asset, error) {
	if err := s.refresh(ctx); err != nil {
		return nil, err
	}

	var balances balanceResponse
	if err := s.get(ctx, "/bff/v2/getBalanceInfo", &balances, &balances.Header); err != nil {
		return nil, err
	}

	var points pointHistoryResponse
	if err := s.get(ctx, "/bff/v2/getPointHistory", &points, &points.Header); err != nil {
		return nil, err
	}

	money := decimal.Zero
	if info := balances.Payload.WalletDetail.EmoneyBalanceInfo; info != nil {
		money = info.Balance
	}

	return []domain.Asset{
		{Name: "PayPay Money", Value: money},
		{Name: "PayPay Money Light", Value: balances.Payload.WalletDetail.PrepaidBalanceInfo.Balance},
		{Name: "PayPay Point", Value: balances.Payload.WalletDetail.CashBackBalanceInfo.Balance},
		{Name: "PayPay Investment Points", Value: points.Payload.PointDetails.InvestmentAssets.ValuationAmount},
	}, nil
}

// refresh exchanges the long-lived refresh token for a fresh access
// token; the mobile access token expires after 90 days, the refresh
// token survives it.
func (s *Source) refresh(ctx context.Context) error {
	if s.cfg.RefreshToken == "" {
		return errors.New("paypay refresh token not configured")
	}

	reqBody, err := json.Marshal(map[string]any{
		"data": map[string]string{
			"clientId":     oauthClientID,
			"refreshToken": s.cfg.RefreshToken,
			"tokenVersion": "v2",
		},
	})
	if err != nil {
		return errors.Wrap(err, "encode refresh request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/bff/v2/oauth2/refresh", bytes.NewReader(reqBody))
	if err != nil {
		return errors.Wrap(err, "build refresh request")
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "refresh paypay token")
	}
	defer resp.Body.Close()

	var body refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return errors.Wrap(err, "decode refresh response")
	}
	if credentialErrorCodes[body.Header.ResultCode] {
		return errors.Errorf("paypay refresh token rejected: %s %s", body.Header.ResultCode, body.Header.ResultMessage)
	}
	if body.Header.ResultCode != resultOK {
		return errors.Errorf("paypay refresh failed: %s %s", body.Header.ResultCode, body.Header.ResultMessage)
	}

	if body.Payload.AccessToken != "" {
		s.accessToken = body.Payload.AccessToken
	}
	return nil
}

func (s *Source) get(ctx context.Context, path string, out any, header *apiHeader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path+"?payPayLang=ja", nil)
	if err != nil {
		return errors.Wrapf(err, "build %s request", path)
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "fetch %s", path)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s response", path)
	}
	if header.ResultCode != resultOK {
		return errors.Errorf("paypay %s failed: %s %s", path, header.ResultCode, header.ResultMessage)
	}
	return nil
}

// setHeaders mimics the iOS app's request envelope; the BFF rejects
// requests without a device identity.
func (s *Source) setHeaders(req *http.Request) {
	h := req.Header
	h.Set("Content-Type", "application/json")
	h.Set("Accept-Charset", "UTF-8")
	h.Set("Client-Mode", "NORMAL")
	h.Set("Client-OS-Release-Version", "16.7.5")
	h.Set("Client-OS-Type", "IOS")
	h.Set("Client-OS-Version", "16.7.5")
	h.Set("Client-Type", "PAYPAYAPP")
	h.Set("Client-UUID", s.clientUUID)
	h.Set("Client-Version", appVersion)
	h.Set("Device-Brand-Name", "apple")
	h.Set("Device-Hardware-Name", "iPhone10,1")
	h.Set("Device-Manufacturer-Name", "apple")
	h.Set("Device-Name", "iPhone10,1")
	h.Set("Device-UUID", s.deviceUUID)
	h.Set("Is-Emulator", "false")
	h.Set("Network-Status", "WIFI")
	h.Set("System-Locale", "ja")
	h.Set("Timezone", "Asia/Tokyo")
	h.Set("User-Agent", fmt.Sprintf("PaypayApp/%s iOS16.7.5 Ktor", appVersion))
	h.Set("Authorization", "Bearer "+s.accessToken)
}
