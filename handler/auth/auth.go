package auth

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"huski/handler/render"
	"huski/pkg/address"

	"github.com/bluele/gcache"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/fox-one/pkg/logger"
	"github.com/twitchtv/twirp"
)

const (
	// HeaderAccount caller address header
	HeaderAccount = "X-Account"
	// HeaderTimestamp signing time in unix milliseconds
	HeaderTimestamp = "X-Timestamp"
	// HeaderSignature hex secp256k1 signature of the request digest
	HeaderSignature = "X-Signature"

	// DefaultMaxSkew accepted distance between the signing time and now
	DefaultMaxSkew = 5 * time.Minute

	maxBodySize = 1 << 20
)

var (
	// ErrBadSignature signature missing, malformed or not made by the account
	ErrBadSignature = errors.New("auth: bad signature")
	// ErrExpired signing time outside of the accepted window
	ErrExpired = errors.New("auth: request expired")
	// ErrReplayed signature already seen
	ErrReplayed = errors.New("auth: request replayed")
)

type ctxKey int

const accountKey ctxKey = iota

// WithAccount context with the calling account
func WithAccount(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, accountKey, account)
}

// Account calling account of the request
func Account(ctx context.Context) (string, bool) {
	account, ok := ctx.Value(accountKey).(string)
	return account, ok && account != ""
}

// Digest keccak256 of the signed request fields
func Digest(method, uri string, timestamp int64, body []byte) []byte {
	msg := fmt.Sprintf("%s\n%s\n%d\n%x", strings.ToUpper(method), uri, timestamp, crypto.Keccak256(body))
	return crypto.Keccak256([]byte(msg))
}

// Sign set the auth headers of a request signed by key
func Sign(key *ecdsa.PrivateKey, method, uri string, body []byte, at time.Time) (http.Header, error) {
	ts := at.UnixMilli()
	sig, err := crypto.Sign(Digest(method, uri, ts, body), key)
	if err != nil {
		return nil, err
	}

	h := http.Header{}
	h.Set(HeaderAccount, crypto.PubkeyToAddress(key.PublicKey).Hex())
	h.Set(HeaderTimestamp, strconv.FormatInt(ts, 10))
	h.Set(HeaderSignature, hexutil.Encode(sig))
	return h, nil
}

// ParseKey hex encoded secp256k1 private key
func ParseKey(s string) (*ecdsa.PrivateKey, error) {
	return crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
}

// Authenticator verifies signed requests
type Authenticator struct {
	maxSkew time.Duration
	mu      sync.Mutex
	seen    gcache.Cache
	now     func() time.Time
}

// New new authenticator, maxSkew <= 0 means DefaultMaxSkew
func New(maxSkew time.Duration) *Authenticator {
	if maxSkew <= 0 {
		maxSkew = DefaultMaxSkew
	}

	return &Authenticator{
		maxSkew: maxSkew,
		seen:    gcache.New(100000).LRU().Expiration(2 * maxSkew).Build(),
		now:     time.Now,
	}
}

// Verify returns the signing account of r, the body is restored for the handlers
func (a *Authenticator) Verify(r *http.Request) (string, error) {
	account := address.Normalize(r.Header.Get(HeaderAccount))
	if !address.Valid(account) {
		return "", ErrBadSignature
	}

	ts, err := strconv.ParseInt(r.Header.Get(HeaderTimestamp), 10, 64)
	if err != nil {
		return "", ErrBadSignature
	}

	if skew := a.now().Sub(time.UnixMilli(ts)); skew > a.maxSkew || skew < -a.maxSkew {
		return "", ErrExpired
	}

	sig, err := hexutil.Decode(r.Header.Get(HeaderSignature))
	if err != nil || len(sig) != crypto.SignatureLength {
		return "", ErrBadSignature
	}

	var body []byte
	if r.Body != nil {
		if body, err = io.ReadAll(io.LimitReader(r.Body, maxBodySize)); err != nil {
			return "", err
		}
		r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))
	}

	pub, err := crypto.SigToPub(Digest(r.Method, r.URL.RequestURI(), ts, body), sig)
	if err != nil || crypto.PubkeyToAddress(*pub).Hex() != account {
		return "", ErrBadSignature
	}

	id := hex.EncodeToString(sig)
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.seen.Has(id) {
		return "", ErrReplayed
	}
	_ = a.seen.Set(id, struct{}{})

	return account, nil
}

// HandleAuthentication puts the signing account into the request context,
// unsigned or badly signed requests continue anonymously
func (a *Authenticator) HandleAuthentication(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(HeaderSignature) == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		account, err := a.Verify(r)
		if err != nil {
			logger.FromContext(ctx).WithError(err).Debugln("verify request signature")
			next.ServeHTTP(w, r)
			return
		}

		log := logger.FromContext(ctx).WithField("account", account)
		ctx = logger.WithContext(ctx, log)
		next.ServeHTTP(w, r.WithContext(WithAccount(ctx, account)))
	}

	return http.HandlerFunc(fn)
}

// LoginRequired rejects requests without a caller
func LoginRequired(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if _, ok := Account(r.Context()); !ok {
			render.Error(w, twirp.NewError(twirp.Unauthenticated, "signed request required"))
			return
		}

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}
