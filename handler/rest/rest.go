package rest

import (
	"errors"
	"net/http"

	"huski/core"
	"huski/handler/auth"
	"huski/handler/render"

	"github.com/go-chi/chi"
)

// Vault a vault with its config
type Vault struct {
	Service core.IVaultService
	Config  core.IVaultConfigService
}

// Config rest dependencies
type Config struct {
	Blocks       core.IBlockService
	Vaults       []Vault
	FairLaunch   core.IFairLaunchService
	Bank         core.ITokenBank
	Timelock     core.ITimelockService
	Transactions core.TransactionStore
	// Stronk optional, its routes are mounted if set
	Stronk core.IStronkService
	// Auth verifies signed requests, a default one is used if nil
	Auth *auth.Authenticator
}

// Handle handle rest api request
func Handle(cfg Config) http.Handler {
	vaults := make(map[string]Vault, len(cfg.Vaults))
	for _, v := range cfg.Vaults {
		vaults[v.Service.Symbol()] = v
	}

	a := &auditor{store: cfg.Transactions, blocks: cfg.Blocks}

	authenticator := cfg.Auth
	if authenticator == nil {
		authenticator = auth.New(auth.DefaultMaxSkew)
	}

	router := chi.NewRouter()
	router.Use(authenticator.HandleAuthentication)
	router.Use(handleRequestID)
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Route("/vaults", func(r chi.Router) {
		r.Get("/", listVaultsHandler(cfg.Vaults))
		r.Route("/{symbol}", func(r chi.Router) {
			r.Get("/", vaultHandler(vaults))
			r.Get("/positions/{id}", positionHandler(vaults))
			r.Get("/owners/{owner}/positions", ownerPositionsHandler(vaults))

			r.Group(func(r chi.Router) {
				r.Use(auth.LoginRequired)
				r.Post("/deposit", depositHandler(vaults, a))
				r.Post("/withdraw", withdrawHandler(vaults, a))
				r.Post("/work", workHandler(vaults, a))
				r.Post("/positions/{id}/kill", killHandler(vaults, a))
			})
		})
	})

	router.Route("/pools", func(r chi.Router) {
		r.Get("/", listPoolsHandler(cfg.FairLaunch))
		r.Get("/{pid}/users/{user}", poolUserHandler(cfg.FairLaunch))

		r.Group(func(r chi.Router) {
			r.Use(auth.LoginRequired)
			r.Post("/{pid}/deposit", stakeHandler(cfg.FairLaunch, a))
			r.Post("/{pid}/withdraw", unstakeHandler(cfg.FairLaunch, a))
			r.Post("/{pid}/harvest", harvestHandler(cfg.FairLaunch, a))
			r.Post("/{pid}/emergency-withdraw", emergencyWithdrawHandler(cfg.FairLaunch, a))
		})
	})

	router.Route("/tokens/{symbol}", func(r chi.Router) {
		r.Get("/accounts/{addr}", tokenAccountHandler(cfg.Bank))
		r.With(auth.LoginRequired).Post("/unlock", unlockHandler(cfg.Bank, a))
	})

	router.Route("/proposals", func(r chi.Router) {
		r.Get("/", listProposalsHandler(cfg.Timelock))
		r.Get("/{hash}", proposalHandler(cfg.Timelock))

		r.Group(func(r chi.Router) {
			r.Use(auth.LoginRequired)
			r.Post("/", queueProposalHandler(cfg.Timelock, a))
			r.Post("/{hash}/execute", executeProposalHandler(cfg.Timelock, a))
			r.Post("/{hash}/cancel", cancelProposalHandler(cfg.Timelock, a))
		})
	})

	if cfg.Stronk != nil {
		router.Route("/stronk", func(r chi.Router) {
			r.Get("/", stronkHandler(cfg.Stronk))
			r.Get("/hodlers/{addr}", hodlerHandler(cfg.Stronk))

			r.Group(func(r chi.Router) {
				r.Use(auth.LoginRequired)
				r.Post("/hodl", hodlHandler(cfg.Stronk, a))
				r.Post("/unhodl", unhodlHandler(cfg.Stronk, a))
			})
		})
	}

	router.Get("/transactions", transactionsHandler(cfg.Transactions))

	return router
}

func caller(r *http.Request) string {
	account, _ := auth.Account(r.Context())
	return account
}

func findVault(vaults map[string]Vault, r *http.Request) (Vault, error) {
	v, ok := vaults[chi.URLParam(r, "symbol")]
	if !ok {
		return Vault{}, core.ErrVaultNotFound
	}

	return v, nil
}
