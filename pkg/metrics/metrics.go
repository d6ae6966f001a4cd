// Package metrics prometheus collectors of the ledger engines
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Metrics ledger collectors
type Metrics struct {
	operations     *prometheus.CounterVec
	totalDebt      *prometheus.GaugeVec
	reservePool    *prometheus.GaugeVec
	utilization    *prometheus.GaugeVec
	accPerShare    *prometheus.GaugeVec
	proposalQueued prometheus.Gauge
}

var (
	once     sync.Once
	registry *Metrics
)

// Ledger process wide collectors, registered on first use
func Ledger() *Metrics {
	once.Do(func() {
		registry = &Metrics{
			operations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "huski_operations_total",
				Help: "Count of ledger operations by engine, op and result.",
			}, []string{"engine", "op", "result"}),
			totalDebt: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "huski_vault_total_debt",
				Help: "Outstanding debt of each vault.",
			}, []string{"vault"}),
			reservePool: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "huski_vault_reserve_pool",
				Help: "Protocol reserve of each vault.",
			}, []string{"vault"}),
			utilization: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "huski_vault_utilization",
				Help: "Debt over debt plus idle funds.",
			}, []string{"vault"}),
			accPerShare: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "huski_pool_acc_reward_per_share",
				Help: "Reward accumulator of each fairlaunch pool.",
			}, []string{"pool"}),
			proposalQueued: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "huski_timelock_pending_proposals",
				Help: "Proposals queued and not executed nor canceled.",
			}),
		}
		prometheus.MustRegister(
			registry.operations,
			registry.totalDebt,
			registry.reservePool,
			registry.utilization,
			registry.accPerShare,
			registry.proposalQueued,
		)
	})
	return registry
}

// ObserveOperation count an operation result
func (m *Metrics) ObserveOperation(engine, op string, err error) {
	if m == nil {
		return
	}

	result := "ok"
	if err != nil {
		result = "error"
	}
	m.operations.WithLabelValues(engine, op, result).Inc()
}

// ObserveVault record vault gauges
func (m *Metrics) ObserveVault(vault string, totalDebt, reservePool, utilization decimal.Decimal) {
	if m == nil {
		return
	}

	m.totalDebt.WithLabelValues(vault).Set(totalDebt.InexactFloat64())
	m.reservePool.WithLabelValues(vault).Set(reservePool.InexactFloat64())
	m.utilization.WithLabelValues(vault).Set(utilization.InexactFloat64())
}

// ObservePool record pool accumulator
func (m *Metrics) ObservePool(pool string, acc decimal.Decimal) {
	if m == nil {
		return
	}

	m.accPerShare.WithLabelValues(pool).Set(acc.InexactFloat64())
}

// ObservePendingProposals record the pending proposal count
func (m *Metrics) ObservePendingProposals(n int) {
	if m == nil {
		return
	}

	m.proposalQueued.Set(float64(n))
}
