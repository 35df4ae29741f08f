package market

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/affiliate-market/pkg/code/common"
	"github.com/code-payments/affiliate-market/pkg/code/data/campaign"
	code_market "github.com/code-payments/affiliate-market/pkg/code/market"
	"github.com/code-payments/affiliate-market/pkg/rate"
)

const (
	v1PathPrefix            = "/v1"
	v1CreateCampaignPath    = v1PathPrefix + "/createCampaign"
	v1ProcessMintPath       = v1PathPrefix + "/processMint"
	v1GetCampaignPath       = v1PathPrefix + "/getCampaign"
	v1GetAffiliateStatsPath = v1PathPrefix + "/getAffiliateStats"
	v1GetMintAccountsPath   = v1PathPrefix + "/getMintAccounts"

	campaignQueryParam   = "campaign"
	collectionQueryParam = "collection"
	affiliateQueryParam  = "affiliate"
	buyerQueryParam      = "buyer"

	contentTypeHeaderName      = "content-type"
	jsonContentTypeHeaderValue = "application/json"
)

type Server struct {
	log     *logrus.Entry
	market  *code_market.Market
	limiter rate.Limiter
}

func NewMarketServer(market *code_market.Market, limiter rate.Limiter) *Server {
	return &Server{
		log:     logrus.StandardLogger().WithField("type", "market/server"),
		market:  market,
		limiter: limiter,
	}
}

type handlerFunc func(r *http.Request) (int, GenericApiResponseBody)

// serve writes the JSON response of fn, once the request passes the method
// and rate limit checks.
func (s *Server) serve(path, method string, fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := s.log.WithField("path", path)

		statusCode, body := func() (int, GenericApiResponseBody) {
			if r.Method != method {
				return http.StatusMethodNotAllowed, NewGenericApiFailureResponseBody(errors.New("http " + method + " expected"))
			}

			clientIP := getClientIP(r)
			allowed, err := s.limiter.Allow(clientIP)
			if err != nil {
				log.WithError(err).Warn("failure checking rate limit")
				return http.StatusInternalServerError, NewGenericApiFailureResponseBody(errInternal)
			} else if !allowed {
				log.WithField("client_ip", clientIP).Debug("request rate limited")
				return http.StatusTooManyRequests, NewGenericApiFailureResponseBody(errRateLimited)
			}

			return fn(r)
		}()

		w.Header().Set(contentTypeHeaderName, jsonContentTypeHeaderValue)
		w.WriteHeader(statusCode)
		if _, err := w.Write([]byte(body.ToString())); err != nil {
			log.WithError(err).Info("failure writing http response")
		}
	}
}

func (s *Server) failure(path string, err error) (int, GenericApiResponseBody) {
	statusCode, clientErr := HandleMarketErrorInWebContext(err)
	if statusCode == http.StatusInternalServerError {
		s.log.WithField("path", path).WithError(err).Warn("failure handling request")
	}
	return statusCode, NewGenericApiFailureResponseBody(clientErr)
}

func (s *Server) createCampaignHandler(r *http.Request) (int, GenericApiResponseBody) {
	req, err := newCreateCampaignRequestFromHttpContext(r)
	if err != nil {
		return http.StatusBadRequest, NewGenericApiFailureResponseBody(err)
	}

	ix, err := verifySignedRequest(req)
	if err != nil {
		return s.failure(v1CreateCampaignPath, err)
	}

	if _, err := s.market.ExecuteInstruction(r.Context(), ix, req.signer().PublicKey().ToBytes()); err != nil {
		return s.failure(v1CreateCampaignPath, err)
	}

	record, err := s.market.GetCampaignByCollection(r.Context(), req.collectionMint)
	if err != nil {
		return s.failure(v1CreateCampaignPath, err)
	}

	body := NewGenericApiSuccessResponseBody()
	body["campaign"] = toCampaignView(record)
	return http.StatusOK, body
}

func (s *Server) processMintHandler(r *http.Request) (int, GenericApiResponseBody) {
	req, err := newProcessMintRequestFromHttpContext(r)
	if err != nil {
		return http.StatusBadRequest, NewGenericApiFailureResponseBody(err)
	}

	ix, err := verifySignedRequest(req)
	if err != nil {
		return s.failure(v1ProcessMintPath, err)
	}

	result, err := s.market.ExecuteInstruction(r.Context(), ix, req.signer().PublicKey().ToBytes())
	if err != nil {
		return s.failure(v1ProcessMintPath, err)
	}

	body := NewGenericApiSuccessResponseBody()
	body["mint"] = toMintResultView(result)
	return http.StatusOK, body
}

func (s *Server) getCampaignHandler(r *http.Request) (int, GenericApiResponseBody) {
	query := r.URL.Query()

	var lookup func() (*campaign.Record, error)
	switch {
	case query.Has(campaignQueryParam):
		address, err := parseAccount(campaignQueryParam, query.Get(campaignQueryParam))
		if err != nil {
			return http.StatusBadRequest, NewGenericApiFailureResponseBody(err)
		}
		lookup = func() (*campaign.Record, error) {
			return s.market.GetCampaign(r.Context(), address)
		}
	case query.Has(collectionQueryParam):
		collectionMint, err := parseAccount(collectionQueryParam, query.Get(collectionQueryParam))
		if err != nil {
			return http.StatusBadRequest, NewGenericApiFailureResponseBody(err)
		}
		lookup = func() (*campaign.Record, error) {
			return s.market.GetCampaignByCollection(r.Context(), collectionMint)
		}
	default:
		return http.StatusBadRequest, NewGenericApiFailureResponseBody(errors.New("campaign or collection is required"))
	}

	record, err := lookup()
	if err != nil {
		return s.failure(v1GetCampaignPath, err)
	}

	body := NewGenericApiSuccessResponseBody()
	body["campaign"] = toCampaignView(record)
	return http.StatusOK, body
}

func (s *Server) getAffiliateStatsHandler(r *http.Request) (int, GenericApiResponseBody) {
	query := r.URL.Query()

	campaignAddress, err := parseAccount(campaignQueryParam, query.Get(campaignQueryParam))
	if err != nil {
		return http.StatusBadRequest, NewGenericApiFailureResponseBody(err)
	}

	referrer, err := parseAccount(affiliateQueryParam, query.Get(affiliateQueryParam))
	if err != nil {
		return http.StatusBadRequest, NewGenericApiFailureResponseBody(err)
	}

	record, err := s.market.GetAffiliateStats(r.Context(), campaignAddress, referrer)
	if err != nil {
		return s.failure(v1GetAffiliateStatsPath, err)
	}

	body := NewGenericApiSuccessResponseBody()
	body["stats"] = toAffiliateStatsView(record)
	return http.StatusOK, body
}

func (s *Server) getMintAccountsHandler(r *http.Request) (int, GenericApiResponseBody) {
	query := r.URL.Query()

	campaignAddress, err := parseAccount(campaignQueryParam, query.Get(campaignQueryParam))
	if err != nil {
		return http.StatusBadRequest, NewGenericApiFailureResponseBody(err)
	}

	buyer, err := parseAccount(buyerQueryParam, query.Get(buyerQueryParam))
	if err != nil {
		return http.StatusBadRequest, NewGenericApiFailureResponseBody(err)
	}

	var referrer *common.Account
	if query.Has(affiliateQueryParam) {
		referrer, err = parseAccount(affiliateQueryParam, query.Get(affiliateQueryParam))
		if err != nil {
			return http.StatusBadRequest, NewGenericApiFailureResponseBody(err)
		}
	}

	accounts, err := s.market.GetMintAccounts(r.Context(), campaignAddress, buyer)
	if err != nil {
		return s.failure(v1GetMintAccountsPath, err)
	}

	view, err := toMintAccountsView(accounts, referrer)
	if err != nil {
		return s.failure(v1GetMintAccountsPath, err)
	}

	body := NewGenericApiSuccessResponseBody()
	body["index"] = accounts.NftAccounts.Index
	body["price"] = accounts.Campaign.Price
	body["accounts"] = view
	return http.StatusOK, body
}

func (s *Server) GetHandlers() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		v1CreateCampaignPath:    s.serve(v1CreateCampaignPath, http.MethodPost, s.createCampaignHandler),
		v1ProcessMintPath:       s.serve(v1ProcessMintPath, http.MethodPost, s.processMintHandler),
		v1GetCampaignPath:       s.serve(v1GetCampaignPath, http.MethodGet, s.getCampaignHandler),
		v1GetAffiliateStatsPath: s.serve(v1GetAffiliateStatsPath, http.MethodGet, s.getAffiliateStatsHandler),
		v1GetMintAccountsPath:   s.serve(v1GetMintAccountsPath, http.MethodGet, s.getMintAccountsHandler),
	}
}
