package market

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/code-payments/affiliate-market/pkg/code/ledger"
	code_market "github.com/code-payments/affiliate-market/pkg/code/market"
	"github.com/code-payments/affiliate-market/pkg/solana"
	"github.com/code-payments/affiliate-market/pkg/solana/affiliatemarket"
)

const (
	successJsonKey   = "success"
	errorJsonKey     = "error"
	errorCodeJsonKey = "code"

	clientIPHeaderName = "x-forwarded-for"
)

var (
	errAuthenticationFailed = errors.New("authentication failed")
	errRequestTimedOut      = errors.New("request timed out")
	errInternal             = errors.New("internal server error")
	errRateLimited          = errors.New("too many requests")
)

type GenericApiResponseBody map[string]any

func NewGenericApiSuccessResponseBody() GenericApiResponseBody {
	return map[string]any{
		successJsonKey: true,
	}
}

func NewGenericApiFailureResponseBody(err error) GenericApiResponseBody {
	body := map[string]any{
		successJsonKey: false,
		errorJsonKey:   err.Error(),
	}
	if marketErr, ok := code_market.GetError(err); ok {
		body[errorCodeJsonKey] = marketErr.Name
	}
	return body
}

func (b *GenericApiResponseBody) ToString() string {
	marshalled, _ := json.Marshal(b)
	return string(marshalled)
}

// HandleMarketErrorInWebContext maps a market failure to the status code and
// error that's safe to return to the client.
func HandleMarketErrorInWebContext(err error) (int, error) {
	if err == nil {
		return http.StatusOK, nil
	}

	if marketErr, ok := code_market.GetError(err); ok {
		switch marketErr {
		case code_market.ErrSoldOut, code_market.ErrCampaignAlreadyExists:
			return http.StatusConflict, err
		case code_market.ErrCampaignNotFound, code_market.ErrAffiliateStatsNotFound:
			return http.StatusNotFound, err
		default:
			return http.StatusBadRequest, err
		}
	}

	switch {
	case errors.Is(err, ledger.ErrMissingSignature), errors.Is(err, solana.ErrInvalidSignature):
		return http.StatusUnauthorized, errAuthenticationFailed
	case errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrNotRentExempt),
		errors.Is(err, ledger.ErrAccountInUse),
		errors.Is(err, affiliatemarket.ErrInvalidAccounts),
		errors.Is(err, affiliatemarket.ErrInvalidInstructionData):
		return http.StatusBadRequest, err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout, errRequestTimedOut
	default:
		return http.StatusInternalServerError, errInternal
	}
}

// getClientIP prefers the address reported by the load balancer over the
// address of the connection.
func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get(clientIPHeaderName); len(forwarded) > 0 {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
