package market

import (
	"context"
	"crypto/ed25519"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/affiliate-market/pkg/code/common"
	"github.com/code-payments/affiliate-market/pkg/code/data/affiliate"
	"github.com/code-payments/affiliate-market/pkg/code/data/campaign"
	"github.com/code-payments/affiliate-market/pkg/metrics"
	"github.com/code-payments/affiliate-market/pkg/solana/affiliatemarket"
	"github.com/code-payments/affiliate-market/pkg/solana/system"
	"github.com/code-payments/affiliate-market/pkg/solana/token"
	"github.com/code-payments/affiliate-market/pkg/solana/tokenmetadata"
)

// ProcessMintRequest is a buyer's purchase of the next collectible of a
// campaign. The buyer is expected to have signed for the purchase.
type ProcessMintRequest struct {
	Buyer     *common.Account
	Campaign  *common.Account
	Creator   *common.Account
	Affiliate Affiliate

	NftMint       *common.Account
	Metadata      *common.Account
	MasterEdition *common.Account

	CollectionMint          *common.Account
	CollectionMetadata      *common.Account
	CollectionMasterEdition *common.Account

	// Optional. When provided, they must match the canonical accounts.
	AffiliateReceiver   *common.Account
	BuyerNftAccount     *common.Account
	MintAuthority       *common.Account
	CollectionAuthority *common.Account

	Name   string
	Symbol string
	Uri    string
}

func (r *ProcessMintRequest) validate() error {
	required := []struct {
		name    string
		account *common.Account
	}{
		{"buyer", r.Buyer},
		{"campaign", r.Campaign},
		{"creator", r.Creator},
		{"nft mint", r.NftMint},
		{"metadata", r.Metadata},
		{"master edition", r.MasterEdition},
		{"collection mint", r.CollectionMint},
		{"collection metadata", r.CollectionMetadata},
		{"collection master edition", r.CollectionMasterEdition},
	}
	for _, field := range required {
		if field.account == nil {
			return errors.Errorf("%s account is required", field.name)
		}
	}
	return nil
}

// MintResult describes a completed purchase
type MintResult struct {
	RequestId string

	Campaign          *common.Account
	Mint              *common.Account
	Metadata          *common.Account
	MasterEdition     *common.Account
	BuyerTokenAccount *common.Account

	Affiliate Affiliate

	// AffiliateCut and CreatorCut are the amounts actually paid out. Without an
	// affiliate, the creator is paid the whole price.
	AffiliateCut   uint64
	CreatorCut     uint64
	AffiliateStats *affiliate.Record

	// Minted is the campaign's minted count after the purchase
	Minted uint64
}

// ProcessMint sells the next collectible of a campaign to the buyer. The
// payment, issuance, collection verification, affiliate accounting and
// campaign update apply atomically, or not at all. Purchases against the same
// campaign are serialized.
func (m *Market) ProcessMint(ctx context.Context, req *ProcessMintRequest) (result *MintResult, err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "ProcessMint")
	defer func() {
		tracer.OnError(err)
		tracer.End()
	}()

	if err := req.validate(); err != nil {
		return nil, err
	}

	requestId := uuid.New().String()
	campaignAddress := req.Campaign.PublicKey().ToBase58()

	log := m.log.WithFields(logrus.Fields{
		"method":     "ProcessMint",
		"request_id": requestId,
		"campaign":   campaignAddress,
		"buyer":      req.Buyer.PublicKey().ToBase58(),
		"affiliate":  req.Affiliate.String(),
	})
	tracer.AddAttribute("request_id", requestId)

	lockedCtx, unlock, err := m.lockCampaign(ctx, campaignAddress)
	if err != nil {
		log.WithError(err).Warn("failure locking campaign")
		return nil, err
	}
	defer unlock()

	// The transaction may be retried, so every attempt starts over from a
	// fresh workflow that reads its state within that attempt
	var workflow *mintWorkflow
	err = m.data.ExecuteInTx(lockedCtx, sql.LevelSerializable, func(ctx context.Context) error {
		workflow = &mintWorkflow{
			log:       log,
			market:    m,
			req:       req,
			requestId: requestId,
			state:     MintStateValidating,
		}
		return workflow.run(ctx)
	})
	if err != nil {
		if workflow == nil {
			log.WithError(err).Warn("failure starting mint transaction")
			return nil, err
		}

		abortedIn := workflow.state
		if abortedIn == MintStateDone {
			abortedIn = MintStateCommitting
		}
		workflow.state = MintStateAborted

		log.WithError(err).WithField("state", abortedIn.String()).Info("mint aborted")
		recordMintAbortedEvent(ctx, requestId, campaignAddress, abortedIn, err)
		return nil, err
	}

	log.WithField("minted", workflow.result.Minted).Info("mint processed")
	recordMintProcessedEvent(ctx, workflow.result)

	return workflow.result, nil
}

// mintWorkflow carries a single purchase through its states. Every value the
// later states depend on is computed while validating, so nothing is written
// before all preconditions hold.
type mintWorkflow struct {
	log    *logrus.Entry
	market *Market
	req    *ProcessMintRequest

	requestId string
	state     MintState

	campaign         *campaign.Record
	campaignAccounts *common.CampaignAccounts
	nftAccounts      *common.NftAccounts

	nftMintAuthority    *Authority
	mintAuthority       *Authority
	collectionAuthority *Authority

	affiliateReceiver *common.Account
	affiliateCut      uint64
	creatorCut        uint64
	nextMinted        uint64

	affiliateStats *affiliate.Record
	result         *MintResult
}

func (w *mintWorkflow) run(ctx context.Context) error {
	for w.state != MintStateDone {
		var err error
		switch w.state {
		case MintStateValidating:
			err = w.validate(ctx)
		case MintStatePaying:
			err = w.pay(ctx)
		case MintStateIssuing:
			err = w.issue(ctx)
		case MintStateRegistering:
			err = w.register(ctx)
		case MintStateVerifyingCollection:
			err = w.verifyCollection(ctx)
		case MintStateRecordingAffiliate:
			err = w.recordAffiliate(ctx)
		case MintStateCommitting:
			err = w.commit(ctx)
		default:
			err = errors.Errorf("unexpected mint state %s", w.state)
		}
		if err != nil {
			return err
		}

		w.log.WithField("state", w.state.String()).Trace("mint state completed")
		w.state = w.state.next()
	}
	return nil
}

func (w *mintWorkflow) validate(ctx context.Context) error {
	req := w.req

	record, err := w.market.campaigns.GetCampaign(ctx, req.Campaign)
	if err != nil {
		return err
	}
	w.campaign = record

	if record.IsSoldOut() {
		return ErrSoldOut
	}

	if record.Creator != req.Creator.PublicKey().ToBase58() {
		return errors.Wrap(ErrAuthorityMismatch, "creator does not own the campaign")
	}

	if record.CollectionMint != req.CollectionMint.PublicKey().ToBase58() {
		return errors.Wrap(ErrInvalidCollectionMetadata, "campaign does not sell into the collection")
	}

	if _, err := VerifyAuthority(req.Campaign, record.CampaignBump, campaignSeeds(req.CollectionMint)...); err != nil {
		return err
	}

	w.campaignAccounts, err = w.market.campaigns.GetCampaignAccounts(req.CollectionMint)
	if err != nil {
		return err
	}

	w.nftAccounts, err = w.campaignAccounts.GetNftAccounts(record.Minted, req.Buyer)
	if err != nil {
		return err
	}

	if !w.nftAccounts.Mint.Equals(req.NftMint) {
		return ErrInvalidMintAccount
	}
	if req.BuyerNftAccount != nil && !w.nftAccounts.OwnerTokenAccount.Equals(req.BuyerNftAccount) {
		return errors.Wrap(ErrInvalidMintAccount, "buyer token account does not hold the mint")
	}
	if !w.nftAccounts.Metadata.Equals(req.Metadata) {
		return ErrInvalidMetadata
	}
	if !w.nftAccounts.MasterEdition.Equals(req.MasterEdition) {
		return ErrInvalidMasterEdition
	}

	if err := w.market.collections.Verify(w.campaignAccounts, req.CollectionMetadata, req.CollectionMasterEdition); err != nil {
		return err
	}

	w.nftMintAuthority, err = VerifyAuthority(req.NftMint, w.nftAccounts.MintBump, nftMintSeeds(req.Campaign, record.Minted)...)
	if err != nil {
		return err
	}

	mintAuthority := req.MintAuthority
	if mintAuthority == nil {
		mintAuthority = w.campaignAccounts.MintAuthority
	}
	w.mintAuthority, err = VerifyAuthority(mintAuthority, record.MintAuthorityBump, mintAuthoritySeeds(req.Campaign)...)
	if err != nil {
		return err
	}

	collectionAuthority := req.CollectionAuthority
	if collectionAuthority == nil {
		collectionAuthority = w.campaignAccounts.CollectionAuthority
	}
	w.collectionAuthority, err = VerifyAuthority(collectionAuthority, record.CollectionAuthorityBump, collectionAuthoritySeeds(req.Campaign)...)
	if err != nil {
		return err
	}

	w.affiliateReceiver = req.Affiliate.Receiver(req.Creator)
	if req.AffiliateReceiver != nil && !w.affiliateReceiver.Equals(req.AffiliateReceiver) {
		return errors.Wrap(ErrAuthorityMismatch, "affiliate receiver does not match the affiliate")
	}

	w.affiliateCut, w.creatorCut, err = Split(record.Price, record.AffiliateFeeBps)
	if err != nil {
		return err
	}
	if !req.Affiliate.IsPresent() {
		// The creator receives the whole price, since both cuts sum to it
		w.creatorCut = record.Price
		w.affiliateCut = 0
	}

	w.nextMinted, err = checkedAdd(record.Minted, 1)
	if err != nil {
		return err
	}

	return nil
}

func (w *mintWorkflow) pay(ctx context.Context) error {
	buyer := w.req.Buyer.PublicKey().ToBytes()

	err := w.market.runtime.Invoke(
		ctx,
		system.Transfer(buyer, w.req.Creator.PublicKey().ToBytes(), w.creatorCut),
		buyer,
	)
	if err != nil {
		return errors.Wrap(err, "error paying creator")
	}

	err = w.market.runtime.Invoke(
		ctx,
		system.Transfer(buyer, w.affiliateReceiver.PublicKey().ToBytes(), w.affiliateCut),
		buyer,
	)
	if err != nil {
		return errors.Wrap(err, "error paying affiliate")
	}

	return nil
}

func (w *mintWorkflow) issue(ctx context.Context) error {
	buyer := w.req.Buyer.PublicKey().ToBytes()
	mint := w.nftAccounts.Mint.PublicKey().ToBytes()
	mintAuthority := w.mintAuthority.Address.PublicKey().ToBytes()

	err := w.market.runtime.InvokeSigned(
		ctx,
		affiliatemarket.PROGRAM_ID,
		system.CreateAccount(
			buyer,
			mint,
			token.ProgramKey,
			system.MinimumBalanceForRentExemption(token.MintSize),
			token.MintSize,
		),
		[]ed25519.PublicKey{buyer},
		w.nftMintAuthority.SignerSeeds(),
	)
	if err != nil {
		return errors.Wrap(err, "error creating mint account")
	}

	err = w.market.runtime.Invoke(ctx, token.InitializeMint(mint, mintAuthority, mintAuthority, 0))
	if err != nil {
		return errors.Wrap(err, "error initializing mint")
	}

	createAta, _, err := token.CreateAssociatedTokenAccountIdempotent(buyer, buyer, mint)
	if err != nil {
		return err
	}
	if err := w.market.runtime.Invoke(ctx, createAta, buyer); err != nil {
		return errors.Wrap(err, "error creating buyer token account")
	}

	err = w.market.runtime.InvokeSigned(
		ctx,
		affiliatemarket.PROGRAM_ID,
		token.MintTo(mint, w.nftAccounts.OwnerTokenAccount.PublicKey().ToBytes(), mintAuthority, 1),
		[]ed25519.PublicKey{buyer},
		w.mintAuthority.SignerSeeds(),
	)
	if err != nil {
		return errors.Wrap(err, "error minting collectible")
	}

	return nil
}

func (w *mintWorkflow) register(ctx context.Context) error {
	buyer := w.req.Buyer.PublicKey().ToBytes()
	mint := w.nftAccounts.Mint.PublicKey().ToBytes()
	metadata := w.nftAccounts.Metadata.PublicKey().ToBytes()
	mintAuthority := w.mintAuthority.Address.PublicKey().ToBytes()

	var collectionKey [32]byte
	copy(collectionKey[:], w.req.CollectionMint.PublicKey().ToBytes())

	createMetadata, err := tokenmetadata.NewCreateMetadataAccountV3Instruction(
		&tokenmetadata.CreateMetadataAccountV3InstructionAccounts{
			Metadata:        metadata,
			Mint:            mint,
			MintAuthority:   mintAuthority,
			Payer:           buyer,
			UpdateAuthority: mintAuthority,
		},
		&tokenmetadata.CreateMetadataAccountV3InstructionArgs{
			Data: tokenmetadata.DataV2{
				Name:                 w.req.Name,
				Symbol:               w.req.Symbol,
				Uri:                  w.req.Uri,
				SellerFeeBasisPoints: 0,
				Collection: &tokenmetadata.Collection{
					Verified: false,
					Key:      collectionKey,
				},
			},
			IsMutable: true,
		},
	)
	if err != nil {
		return err
	}

	err = w.market.runtime.InvokeSigned(
		ctx,
		affiliatemarket.PROGRAM_ID,
		createMetadata,
		[]ed25519.PublicKey{buyer},
		w.mintAuthority.SignerSeeds(),
	)
	if err != nil {
		return errors.Wrap(err, "error creating metadata")
	}

	maxSupply := uint64(0)
	createMasterEdition, err := tokenmetadata.NewCreateMasterEditionV3Instruction(
		&tokenmetadata.CreateMasterEditionV3InstructionAccounts{
			Edition:         w.nftAccounts.MasterEdition.PublicKey().ToBytes(),
			Mint:            mint,
			UpdateAuthority: mintAuthority,
			MintAuthority:   mintAuthority,
			Payer:           buyer,
			Metadata:        metadata,
		},
		&tokenmetadata.CreateMasterEditionV3InstructionArgs{
			MaxSupply: &maxSupply,
		},
	)
	if err != nil {
		return err
	}

	err = w.market.runtime.InvokeSigned(
		ctx,
		affiliatemarket.PROGRAM_ID,
		createMasterEdition,
		[]ed25519.PublicKey{buyer},
		w.mintAuthority.SignerSeeds(),
	)
	if err != nil {
		return errors.Wrap(err, "error creating master edition")
	}

	return nil
}

func (w *mintWorkflow) verifyCollection(ctx context.Context) error {
	buyer := w.req.Buyer.PublicKey().ToBytes()

	verify := tokenmetadata.NewVerifySizedCollectionItemInstruction(
		&tokenmetadata.VerifySizedCollectionItemInstructionAccounts{
			Metadata:                w.nftAccounts.Metadata.PublicKey().ToBytes(),
			CollectionAuthority:     w.collectionAuthority.Address.PublicKey().ToBytes(),
			Payer:                   buyer,
			CollectionMint:          w.req.CollectionMint.PublicKey().ToBytes(),
			CollectionMetadata:      w.req.CollectionMetadata.PublicKey().ToBytes(),
			CollectionMasterEdition: w.req.CollectionMasterEdition.PublicKey().ToBytes(),
		},
	)

	err := w.market.runtime.InvokeSigned(
		ctx,
		affiliatemarket.PROGRAM_ID,
		verify,
		[]ed25519.PublicKey{buyer},
		w.collectionAuthority.SignerSeeds(),
	)
	if err != nil {
		return errors.Wrap(err, "error verifying collection item")
	}
	return nil
}

func (w *mintWorkflow) recordAffiliate(ctx context.Context) error {
	referrer, ok := w.req.Affiliate.Account()
	if !ok {
		return nil
	}

	record, err := w.market.affiliates.Record(ctx, w.campaign, w.campaignAccounts, referrer, w.affiliateCut)
	if err != nil {
		return err
	}
	w.affiliateStats = record
	return nil
}

func (w *mintWorkflow) commit(ctx context.Context) error {
	updated := w.campaign.Clone()
	updated.Minted = w.nextMinted
	if err := w.market.data.UpdateCampaign(ctx, &updated); err != nil {
		return errors.Wrap(err, "error updating campaign")
	}
	w.campaign = &updated

	w.result = &MintResult{
		RequestId: w.requestId,

		Campaign:          w.req.Campaign,
		Mint:              w.nftAccounts.Mint,
		Metadata:          w.nftAccounts.Metadata,
		MasterEdition:     w.nftAccounts.MasterEdition,
		BuyerTokenAccount: w.nftAccounts.OwnerTokenAccount,

		Affiliate:      w.req.Affiliate,
		AffiliateCut:   w.affiliateCut,
		CreatorCut:     w.creatorCut,
		AffiliateStats: w.affiliateStats,

		Minted: w.campaign.Minted,
	}
	return nil
}
