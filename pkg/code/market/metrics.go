package market

import (
	"context"
	"time"

	"github.com/code-payments/affiliate-market/pkg/metrics"
)

const (
	metricsStructName = "market.market"

	campaignCreatedEventName = "CampaignCreated"
	mintProcessedEventName   = "MintProcessed"
	mintAbortedEventName     = "MintAborted"

	mintCountMetricName        = "Market/mints"
	lockWaitTimeMetricName     = "Market/campaign_lock_wait"
	lockTimeoutCountMetricName = "Market/campaign_lock_timeouts"
)

func recordMintProcessedEvent(ctx context.Context, result *MintResult) {
	metrics.RecordEvent(ctx, mintProcessedEventName, map[string]interface{}{
		"request_id":    result.RequestId,
		"campaign":      result.Campaign.PublicKey().ToBase58(),
		"mint":          result.Mint.PublicKey().ToBase58(),
		"affiliate":     result.Affiliate.String(),
		"affiliate_cut": result.AffiliateCut,
		"creator_cut":   result.CreatorCut,
		"minted":        result.Minted,
	})
	metrics.RecordCount(ctx, mintCountMetricName, 1)
}

func recordMintAbortedEvent(ctx context.Context, requestId, campaign string, state MintState, err error) {
	kvs := map[string]interface{}{
		"request_id": requestId,
		"campaign":   campaign,
		"state":      state.String(),
		"error":      err.Error(),
	}
	if marketErr, ok := GetError(err); ok {
		kvs["code"] = marketErr.Code
	}
	metrics.RecordEvent(ctx, mintAbortedEventName, kvs)
}

func recordLockWait(ctx context.Context, waited time.Duration, timedOut bool) {
	metrics.RecordDuration(ctx, lockWaitTimeMetricName, waited)
	if timedOut {
		metrics.RecordCount(ctx, lockTimeoutCountMetricName, 1)
	}
}
