package polymarket

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/zansync/zansync/internal/rates"
)

const testAddress = "0x8ba1f109551bD432803012645Ac136ddd64DBA72"

func newTestSource(t *testing.T, etherscan, dataAPI http.HandlerFunc) *Source {
	t.Helper()

	es := httptest.NewServer(etherscan)
	t.Cleanup(es.Close)
	da := httptest.NewServer(dataAPI)
	t.Cleanup(da.Close)

	src, err := New(Config{Address: testAddress, EtherscanAPIKey: "key"}, rates.Fixed(decimal.NewFromInt(150)))
	require.NoError(t, err)
	src.etherscanURL = es.URL
	src.dataAPIURL = da.URL
	return src
}

func TestFetchAll(t *testing.T) {
	var balanceQuery http.Header
	var balanceParams map[string]string

	src := newTestSource(t,
		func(w http.ResponseWriter, r *http.Request) {
			balanceQuery = r.Header
			balanceParams = map[string]string{
				"chainid":         r.URL.Query().Get("chainid"),
				"action":          r.URL.Query().Get("action"),
				"contractaddress": r.URL.Query().Get("contractaddress"),
				"address":         r.URL.Query().Get("address"),
				"apikey":          r.URL.Query().Get("apikey"),
			}
			// 12.5 USDC in raw six-decimal units.
			fmt.Fprint(w, `{"status":"1","message":"OK","result":"12500000"}`)
		},
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, testAddress, r.URL.Query().Get("user"))
			fmt.Fprintf(w, `[{"user":"%s","value":40.25}]`, testAddress)
		},
	)

	assets, err := src.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, assets, 2)

	require.Equal(t, "Cash", assets[0].Name)
	require.True(t, assets[0].Value.Equal(decimal.RequireFromString("1875")), "got %s", assets[0].Value)
	require.Equal(t, "Position", assets[1].Name)
	require.True(t, assets[1].Value.Equal(decimal.RequireFromString("6037.5")), "got %s", assets[1].Value)

	require.Equal(t, "137", balanceParams["chainid"])
	require.Equal(t, "tokenbalance", balanceParams["action"])
	require.Equal(t, usdcTokenAddress, balanceParams["contractaddress"])
	require.Equal(t, testAddress, balanceParams["address"])
	require.Equal(t, "key", balanceParams["apikey"])
	require.NotNil(t, balanceQuery)
}

func TestFetchSumsCashAndPosition(t *testing.T) {
	src := newTestSource(t,
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status":"1","message":"OK","result":"1000000"}`)
		},
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `[{"user":"x","value":2}]`)
		},
	)

	total, err := src.Fetch(context.Background())
	require.NoError(t, err)
	// (1 + 2) USD at 150 JPY.
	require.True(t, total.Equal(decimal.NewFromInt(450)), "got %s", total)
}

func TestFetchAllEtherscanFailure(t *testing.T) {
	src := newTestSource(t,
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status":"0","message":"NOTOK","result":""}`)
		},
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `[]`)
		},
	)

	_, err := src.FetchAll(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "NOTOK")
}

func TestFetchAllEmptyPositionResponse(t *testing.T) {
	src := newTestSource(t,
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status":"1","message":"OK","result":"0"}`)
		},
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `[]`)
		},
	)

	_, err := src.FetchAll(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no position value")
}

func TestNewRejectsInvalidAddress(t *testing.T) {
	_, err := New(Config{Address: "not-an-address"}, rates.Fixed(decimal.NewFromInt(150)))
	require.Error(t, err)
}
