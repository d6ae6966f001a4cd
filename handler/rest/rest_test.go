package rest

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"huski/core"
	"huski/handler/auth"
	"huski/pkg/id"
	"huski/pkg/interest"
	"huski/pkg/txn/txntest"
	"huski/service/fairlaunch"
	"huski/service/farmworker"
	"huski/service/oracle"
	"huski/service/stronk"
	"huski/service/timelock"
	"huski/service/token"
	"huski/service/vault"
	"huski/service/vaultconfig"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memTransactions struct {
	mu  sync.Mutex
	txs []*core.Transaction
}

func (m *memTransactions) Create(_ context.Context, tx *core.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx.ID = int64(len(m.txs) + 1)
	m.txs = append(m.txs, tx)
	return nil
}

func (m *memTransactions) List(_ context.Context, _ time.Time, limit int) ([]*core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit > len(m.txs) {
		limit = len(m.txs)
	}

	return m.txs[:limit], nil
}

func (m *memTransactions) ListByCaller(_ context.Context, caller string, _ int) ([]*core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var txs []*core.Transaction
	for _, tx := range m.txs {
		if tx.Caller == caller {
			txs = append(txs, tx)
		}
	}

	return txs, nil
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var genesis = time.Date(2021, 8, 1, 0, 0, 0, 0, time.UTC)

var (
	keys   = map[string]*ecdsa.PrivateKey{}
	signed int64
)

func key(name string) *ecdsa.PrivateKey {
	k, ok := keys[name]
	if !ok {
		k, _ = crypto.GenerateKey()
		keys[name] = k
	}

	return k
}

func acct(name string) string {
	return crypto.PubkeyToAddress(key(name).PublicKey).Hex()
}

// sign signs req as name, every call uses a new timestamp
func sign(t *testing.T, req *http.Request, name, body string) {
	signed++
	at := time.Now().Add(time.Duration(signed) * time.Millisecond)
	header, err := auth.Sign(key(name), req.Method, req.URL.RequestURI(), []byte(body), at)
	require.Nil(t, err)

	for k := range header {
		req.Header.Set(k, header.Get(k))
	}
}

func setup(t *testing.T) (http.Handler, *memTransactions) {
	ctx := context.Background()
	exec, clock := txntest.New(t, 100)

	busd := token.New(exec, "BUSD", acct("deployer"))
	require.Nil(t, busd.Mint(ctx, acct("deployer"), acct("alice"), d("1000")))
	require.Nil(t, busd.Mint(ctx, acct("deployer"), acct("bob"), d("1000")))

	vaultAddr := vault.Address("ibBUSD")
	shares := token.New(exec, "ibBUSD", vaultAddr)
	debt := token.NewDebt(exec, "debtBUSD", vaultAddr, fairlaunch.Address())
	reward := token.NewLockable(exec, "HUSKI", acct("deployer"), 1000, 2000)

	fl := fairlaunch.New(exec, reward, token.NewBank(debt), fairlaunch.Options{
		Owner:          acct("deployer"),
		Dev:            acct("dev"),
		RewardPerBlock: d("10"),
	})
	require.Nil(t, reward.SetMinter(ctx, acct("deployer"), fl.Address(), true))
	pool, err := fl.AddPool(ctx, acct("deployer"), 1, "debtBUSD", false)
	require.Nil(t, err)

	prices := oracle.New(exec, acct("deployer"))
	require.Nil(t, prices.SetPrices(ctx, acct("deployer"), []*core.PriceData{
		{Token0: "FARM", Token1: "BUSD", Price: d("1"), UpdatedAt: genesis},
	}))

	config := vaultconfig.New(exec, "ibBUSD", acct("deployer"), prices, interest.NewFlat(d("0.1"), d("10")), core.VaultParams{
		MinDebtSize:    d("1"),
		ReservePoolBps: 1000,
		KillPrizeBps:   1000,
	})
	config.SetClock(func() time.Time { return genesis })

	worker := farmworker.New(exec, "farm-busd", acct("deployer"), vaultAddr, busd, "FARM")
	config.RegisterWorker(worker.Name(), worker, core.WorkerRisk{
		AcceptDebt:   true,
		WorkFactor:   7000,
		KillFactor:   8000,
		MaxPriceDiff: 11000,
	})

	v := vault.New(exec, vault.Options{
		Symbol:     "ibBUSD",
		Owner:      acct("deployer"),
		Base:       busd,
		Shares:     shares,
		Debt:       debt,
		FairLaunch: fl,
		DebtPoolID: pool.ID,
		Config:     config,
	})

	tl := timelock.New(exec, timelock.Options{
		Admins: []string{acct("deployer")},
		Delay:  time.Hour,
	})
	tl.SetClock(func() time.Time { return genesis })
	timelock.RegisterFairLaunch(tl, fl)

	require.Nil(t, reward.Mint(ctx, acct("deployer"), acct("carol"), d("30")))
	stronkShares := token.New(exec, "sHUSKI", stronk.Address("sHUSKI"))
	sh := stronk.New(exec, reward, stronkShares, stronk.Options{HodlableEndBlock: 500, LockEndBlock: 600})

	txs := &memTransactions{}
	h := Handle(Config{
		Blocks:       clock,
		Vaults:       []Vault{{Service: v, Config: config}},
		FairLaunch:   fl,
		Bank:         token.NewBank(busd, reward, shares, stronkShares),
		Stronk:       sh,
		Timelock:     tl,
		Transactions: txs,
	})

	return h, txs
}

func do(t *testing.T, h http.Handler, method, path, account, body string) (int, map[string]interface{}) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if account != "" {
		sign(t, req, account, body)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var resp map[string]interface{}
	if strings.HasPrefix(strings.TrimSpace(w.Body.String()), "{") {
		require.Nil(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}

	return w.Code, resp
}

func doList(t *testing.T, h http.Handler, path string) []map[string]interface{} {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var list []map[string]interface{}
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &list))
	return list
}

func TestVaultRoutes(t *testing.T) {
	h, txs := setup(t)

	code, resp := do(t, h, http.MethodGet, "/vaults/ibBUSD", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "0", resp["total_token"])
	assert.Equal(t, "1", resp["share_price"])

	code, resp = do(t, h, http.MethodGet, "/vaults/ibETH", "", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, float64(core.ErrVaultNotFound), resp["code"])

	code, _ = do(t, h, http.MethodPost, "/vaults/ibBUSD/deposit", "", `{"amount":"100"}`)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, resp = do(t, h, http.MethodPost, "/vaults/ibBUSD/deposit", "alice", `{"amount":"100"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "100", resp["shares"])

	code, resp = do(t, h, http.MethodPost, "/vaults/ibBUSD/work", "bob", `{"worker":"farm-busd","principal":"100","borrow":"50"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "50", resp["debt"])

	code, resp = do(t, h, http.MethodGet, "/vaults/ibBUSD/positions/1", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, acct("bob"), resp["owner"])
	assert.Equal(t, "open", resp["status"])
	assert.Equal(t, "150", resp["health"])
	assert.Equal(t, "50", resp["debt"])

	assert.Len(t, doList(t, h, "/vaults/ibBUSD/owners/"+acct("bob")+"/positions"), 1)
	assert.Len(t, doList(t, h, "/vaults/ibBUSD/owners/"+acct("alice")+"/positions"), 0)

	code, resp = do(t, h, http.MethodGet, "/vaults/ibBUSD", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "0.5", resp["utilization"])
	assert.Equal(t, "0.01", resp["borrow_rate"])

	code, resp = do(t, h, http.MethodPost, "/vaults/ibBUSD/work", "alice", `{"position_id":1,"worker":"farm-busd"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, float64(core.ErrUnauthorized), resp["code"])

	code, _ = do(t, h, http.MethodPost, "/vaults/ibBUSD/work", "bob", `{"principal":"1"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = do(t, h, http.MethodPost, "/vaults/ibBUSD/positions/1/kill", "keeper", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, float64(core.ErrCannotLiquidate), resp["code"])

	// only the successful deposit and work are recorded
	require.Len(t, txs.txs, 2)
	assert.Equal(t, core.ActionTypeDeposit, txs.txs[0].Action)
	assert.Equal(t, core.ActionTypeWork, txs.txs[1].Action)
	assert.Equal(t, int64(100), txs.txs[1].Block)

	list := doList(t, h, "/transactions?caller="+acct("bob"))
	require.Len(t, list, 1)
	assert.Equal(t, "100", list[0]["amount"])
}

func TestPoolAndTokenRoutes(t *testing.T) {
	h, _ := setup(t)

	code, _ := do(t, h, http.MethodPost, "/vaults/ibBUSD/deposit", "alice", `{"amount":"100"}`)
	require.Equal(t, http.StatusOK, code)
	code, _ = do(t, h, http.MethodPost, "/vaults/ibBUSD/work", "bob", `{"worker":"farm-busd","principal":"100","borrow":"50"}`)
	require.Equal(t, http.StatusOK, code)

	code, resp := do(t, h, http.MethodGet, "/pools/0/users/"+acct("bob"), "", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "50", resp["amount"])
	assert.Equal(t, "0", resp["pending"])

	code, resp = do(t, h, http.MethodGet, "/pools/", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, resp["pools"], 1)

	code, resp = do(t, h, http.MethodPost, "/pools/0/harvest", "bob", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, float64(core.ErrNothingToHarvest), resp["code"])

	code, resp = do(t, h, http.MethodPost, "/pools/9/deposit", "bob", `{"amount":"1"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, float64(core.ErrPoolNotFound), resp["code"])

	code, resp = do(t, h, http.MethodGet, "/tokens/BUSD/accounts/"+acct("bob"), "", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "900", resp["balance"])
	assert.Equal(t, "0", resp["locked"])

	code, resp = do(t, h, http.MethodGet, "/tokens/ibBUSD/accounts/"+acct("alice"), "", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "100", resp["balance"])

	code, resp = do(t, h, http.MethodGet, "/tokens/DOGE/accounts/"+acct("alice"), "", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, float64(core.ErrTokenNotFound), resp["code"])

	code, resp = do(t, h, http.MethodPost, "/tokens/HUSKI/unlock", "bob", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "0", resp["amount"])
}

func TestProposalRoutes(t *testing.T) {
	h, txs := setup(t)

	eta := genesis.Add(2 * time.Hour).Format(time.RFC3339)
	body := `{"action":"set_pool","content":{"pool_id":0,"alloc_point":5},"eta":"` + eta + `"}`

	code, resp := do(t, h, http.MethodPost, "/proposals", "alice", body)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, float64(core.ErrUnauthorized), resp["code"])

	code, _ = do(t, h, http.MethodPost, "/proposals", "deployer", `{"action":"deposit","content":{}}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = do(t, h, http.MethodPost, "/proposals", "deployer", body)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "queued", resp["status"])
	assert.Equal(t, "set_pool", resp["action"])
	hash := resp["hash"].(string)

	list := doList(t, h, "/proposals")
	require.Len(t, list, 1)

	code, resp = do(t, h, http.MethodPost, "/proposals/"+hash+"/execute", "deployer", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, float64(core.ErrProposalNotReady), resp["code"])

	code, resp = do(t, h, http.MethodPost, "/proposals/"+hash+"/cancel", "deployer", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "canceled", resp["status"])

	code, resp = do(t, h, http.MethodGet, "/proposals/unknown", "", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, float64(core.ErrProposalNotFound), resp["code"])

	require.Len(t, txs.txs, 2)
	assert.Equal(t, core.ActionTypeQueueProposal, txs.txs[0].Action)
	assert.Equal(t, core.ActionTypeCancelProposal, txs.txs[1].Action)
}

func TestStronkRoutes(t *testing.T) {
	h, txs := setup(t)

	code, _ := do(t, h, http.MethodPost, "/stronk/hodl", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, resp := do(t, h, http.MethodPost, "/stronk/hodl", "carol", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "30", resp["amount"])

	code, resp = do(t, h, http.MethodPost, "/stronk/hodl", "carol", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, float64(core.ErrAlreadyHodl), resp["code"])

	code, resp = do(t, h, http.MethodGet, "/stronk", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "30", resp["total_hodl"])
	assert.Equal(t, "HUSKI", resp["reward_token"])

	code, resp = do(t, h, http.MethodGet, "/stronk/hodlers/"+acct("carol"), "", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "30", resp["amount"])

	code, resp = do(t, h, http.MethodGet, "/tokens/sHUSKI/accounts/"+acct("carol"), "", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "30", resp["balance"])

	code, resp = do(t, h, http.MethodPost, "/stronk/unhodl", "carol", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, float64(core.ErrStillLocked), resp["code"])

	require.Len(t, txs.txs, 1)
	assert.Equal(t, core.ActionTypeHodl, txs.txs[0].Action)
}

func TestRequestID(t *testing.T) {
	h, txs := setup(t)
	rid := id.GenTraceID()

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/vaults/ibBUSD/deposit", strings.NewReader(`{"amount":"1"}`))
		sign(t, req, "alice", `{"amount":"1"}`)
		req.Header.Set(headerRequestID, rid)

		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	require.Len(t, txs.txs, 2)
	assert.Equal(t, id.SubTraceID(rid, "deposit"), txs.txs[0].TraceID)
	assert.Equal(t, txs.txs[0].TraceID, txs.txs[1].TraceID)
}

func TestUnsignedCallerRejected(t *testing.T) {
	h, txs := setup(t)
	body := `{"amount":"100"}`

	req := httptest.NewRequest(http.MethodPost, "/vaults/ibBUSD/deposit", strings.NewReader(body))
	req.Header.Set(auth.HeaderAccount, acct("alice"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// bob's signature claiming alice's account
	req = httptest.NewRequest(http.MethodPost, "/vaults/ibBUSD/deposit", strings.NewReader(body))
	sign(t, req, "bob", body)
	req.Header.Set(auth.HeaderAccount, acct("alice"))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// replay of a signed request
	req = httptest.NewRequest(http.MethodPost, "/vaults/ibBUSD/deposit", strings.NewReader(body))
	sign(t, req, "alice", body)
	replay := req.Header.Clone()
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/vaults/ibBUSD/deposit", strings.NewReader(body))
	req.Header = replay
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	require.Len(t, txs.txs, 1)
	assert.Equal(t, acct("alice"), txs.txs[0].Caller)
}
