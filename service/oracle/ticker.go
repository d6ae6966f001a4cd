package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"huski/core"
	"huski/pkg/resthttp"

	"github.com/bluele/gcache"
	"github.com/fox-one/pkg/logger"
	"golang.org/x/sync/singleflight"
)

type tickerService struct {
	endpoint string
	cache    gcache.Cache
	sf       *singleflight.Group
}

// NewTickerService pulls tickers from the price endpoint, results are cached for ttl
func NewTickerService(endpoint string, ttl time.Duration) core.IPriceTickerService {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}

	return &tickerService{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		cache:    gcache.New(256).LRU().Expiration(ttl).Build(),
		sf:       &singleflight.Group{},
	}
}

func (s *tickerService) PullPriceTicker(ctx context.Context, base, quote string) (*core.PriceTicker, error) {
	symbol := base + "-" + quote
	if v, err := s.cache.Get(symbol); err == nil {
		return v.(*core.PriceTicker), nil
	}

	v, err, _ := s.sf.Do(symbol, func() (interface{}, error) {
		url := fmt.Sprintf("%s/api/v2/tickers/%s", s.endpoint, symbol)
		logger.FromContext(ctx).Debugln("pull price:", url)

		resp, err := resthttp.Request(ctx).Get(url)
		if err != nil {
			return nil, err
		}

		var ticker core.PriceTicker
		if err := resthttp.ParseResponse(resp, &ticker); err != nil {
			return nil, err
		}

		if !ticker.Price.IsPositive() {
			return nil, core.ErrInvalidPrice
		}

		ticker.Symbol = symbol
		_ = s.cache.Set(symbol, &ticker)
		return &ticker, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*core.PriceTicker), nil
}
