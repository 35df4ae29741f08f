package market

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/affiliate-market/pkg/code/common"
	"github.com/code-payments/affiliate-market/pkg/solana"
	"github.com/code-payments/affiliate-market/pkg/solana/affiliatemarket"
)

const (
	maxRequestBodySize = 16 * 1024
)

// signedRequest is a request whose instruction must be signed by the account
// paying for it. The client signs the message of a transaction containing the
// single instruction, paid for by the signer, with an empty blockhash.
type signedRequest interface {
	signer() *common.Account
	signature() solana.Signature
	toInstruction() (solana.Instruction, error)
}

// verifySignedRequest rebuilds the signed transaction and verifies the client
// signature against it.
func verifySignedRequest(req signedRequest) (solana.Instruction, error) {
	ix, err := req.toInstruction()
	if err != nil {
		return solana.Instruction{}, err
	}

	signature := req.signature()
	txn := solana.NewTransaction(req.signer().PublicKey().ToBytes(), ix)
	if err := txn.SetSignature(req.signer().PublicKey().ToBytes(), signature[:]); err != nil {
		return solana.Instruction{}, solana.ErrInvalidSignature
	}
	if err := txn.Verify(); err != nil {
		return solana.Instruction{}, err
	}
	return ix, nil
}

type createCampaignRequest struct {
	creator         *common.Account
	collectionMint  *common.Account
	price           uint64
	affiliateFeeBps uint16
	maxSupply       uint64

	clientSignature solana.Signature
}

func newCreateCampaignRequestFromHttpContext(r *http.Request) (*createCampaignRequest, error) {
	httpRequestBody := struct {
		Creator         string `json:"creator"`
		CollectionMint  string `json:"collectionMint"`
		Price           uint64 `json:"price"`
		AffiliateFeeBps uint16 `json:"affiliateFeeBps"`
		MaxSupply       uint64 `json:"maxSupply"`
		Signature       string `json:"signature"`
	}{}

	if err := decodeHttpRequestBody(r, &httpRequestBody); err != nil {
		return nil, err
	}

	creator, err := parseAccount("creator", httpRequestBody.Creator)
	if err != nil {
		return nil, err
	}

	collectionMint, err := parseAccount("collectionMint", httpRequestBody.CollectionMint)
	if err != nil {
		return nil, err
	}

	signature, err := parseSignature(httpRequestBody.Signature)
	if err != nil {
		return nil, err
	}

	return &createCampaignRequest{
		creator:         creator,
		collectionMint:  collectionMint,
		price:           httpRequestBody.Price,
		affiliateFeeBps: httpRequestBody.AffiliateFeeBps,
		maxSupply:       httpRequestBody.MaxSupply,
		clientSignature: signature,
	}, nil
}

func (r *createCampaignRequest) signer() *common.Account {
	return r.creator
}

func (r *createCampaignRequest) signature() solana.Signature {
	return r.clientSignature
}

func (r *createCampaignRequest) toInstruction() (solana.Instruction, error) {
	campaignAccounts, err := r.collectionMint.GetCampaignAccounts()
	if err != nil {
		return solana.Instruction{}, err
	}

	return affiliatemarket.NewCreateCampaignInstruction(
		&affiliatemarket.CreateCampaignInstructionAccounts{
			Creator:             r.creator.PublicKey().ToBytes(),
			Campaign:            campaignAccounts.Campaign.PublicKey().ToBytes(),
			CollectionMint:      r.collectionMint.PublicKey().ToBytes(),
			CollectionAuthority: campaignAccounts.CollectionAuthority.PublicKey().ToBytes(),
			MintAuthority:       campaignAccounts.MintAuthority.PublicKey().ToBytes(),
		},
		&affiliatemarket.CreateCampaignInstructionArgs{
			Price:           r.price,
			AffiliateFeeBps: r.affiliateFeeBps,
			MaxSupply:       r.maxSupply,
		},
	), nil
}

// mintAccountsJson is the full account list of a process_mint instruction. It's
// returned by getMintAccounts and echoed back by clients in processMint.
type mintAccountsJson struct {
	Buyer                   string `json:"buyer"`
	Campaign                string `json:"campaign"`
	Creator                 string `json:"creator"`
	AffiliateReceiver       string `json:"affiliateReceiver"`
	AffiliateStats          string `json:"affiliateStats"`
	NftMint                 string `json:"nftMint"`
	BuyerNftAccount         string `json:"buyerNftAccount"`
	MintAuthority           string `json:"mintAuthority"`
	Metadata                string `json:"metadata"`
	MasterEdition           string `json:"masterEdition"`
	CollectionMint          string `json:"collectionMint"`
	CollectionMetadata      string `json:"collectionMetadata"`
	CollectionMasterEdition string `json:"collectionMasterEdition"`
	CollectionAuthority     string `json:"collectionAuthority"`
}

type processMintRequest struct {
	accounts  *affiliatemarket.ProcessMintInstructionAccounts
	affiliate *common.Account

	name   string
	symbol string
	uri    string

	buyer           *common.Account
	clientSignature solana.Signature
}

func newProcessMintRequestFromHttpContext(r *http.Request) (*processMintRequest, error) {
	httpRequestBody := struct {
		Accounts  mintAccountsJson `json:"accounts"`
		Affiliate *string          `json:"affiliate"`
		Name      string           `json:"name"`
		Symbol    string           `json:"symbol"`
		Uri       string           `json:"uri"`
		Signature string           `json:"signature"`
	}{}

	if err := decodeHttpRequestBody(r, &httpRequestBody); err != nil {
		return nil, err
	}

	accounts := httpRequestBody.Accounts
	fields := []struct {
		name  string
		value string
	}{
		{"buyer", accounts.Buyer},
		{"campaign", accounts.Campaign},
		{"creator", accounts.Creator},
		{"affiliateReceiver", accounts.AffiliateReceiver},
		{"affiliateStats", accounts.AffiliateStats},
		{"nftMint", accounts.NftMint},
		{"buyerNftAccount", accounts.BuyerNftAccount},
		{"mintAuthority", accounts.MintAuthority},
		{"metadata", accounts.Metadata},
		{"masterEdition", accounts.MasterEdition},
		{"collectionMint", accounts.CollectionMint},
		{"collectionMetadata", accounts.CollectionMetadata},
		{"collectionMasterEdition", accounts.CollectionMasterEdition},
		{"collectionAuthority", accounts.CollectionAuthority},
	}

	decoded := make([]*common.Account, len(fields))
	for i, field := range fields {
		account, err := parseAccount(field.name, field.value)
		if err != nil {
			return nil, err
		}
		decoded[i] = account
	}

	req := &processMintRequest{
		accounts: &affiliatemarket.ProcessMintInstructionAccounts{
			Buyer:                   decoded[0].PublicKey().ToBytes(),
			Campaign:                decoded[1].PublicKey().ToBytes(),
			Creator:                 decoded[2].PublicKey().ToBytes(),
			AffiliateReceiver:       decoded[3].PublicKey().ToBytes(),
			AffiliateStats:          decoded[4].PublicKey().ToBytes(),
			NftMint:                 decoded[5].PublicKey().ToBytes(),
			BuyerNftAccount:         decoded[6].PublicKey().ToBytes(),
			MintAuthority:           decoded[7].PublicKey().ToBytes(),
			Metadata:                decoded[8].PublicKey().ToBytes(),
			MasterEdition:           decoded[9].PublicKey().ToBytes(),
			CollectionMint:          decoded[10].PublicKey().ToBytes(),
			CollectionMetadata:      decoded[11].PublicKey().ToBytes(),
			CollectionMasterEdition: decoded[12].PublicKey().ToBytes(),
			CollectionAuthority:     decoded[13].PublicKey().ToBytes(),
		},

		name:   httpRequestBody.Name,
		symbol: httpRequestBody.Symbol,
		uri:    httpRequestBody.Uri,

		buyer: decoded[0],
	}

	var err error
	if httpRequestBody.Affiliate != nil {
		req.affiliate, err = parseAccount("affiliate", *httpRequestBody.Affiliate)
		if err != nil {
			return nil, err
		}
	}

	req.clientSignature, err = parseSignature(httpRequestBody.Signature)
	if err != nil {
		return nil, err
	}

	return req, nil
}

func (r *processMintRequest) signer() *common.Account {
	return r.buyer
}

func (r *processMintRequest) signature() solana.Signature {
	return r.clientSignature
}

func (r *processMintRequest) toInstruction() (solana.Instruction, error) {
	args := &affiliatemarket.ProcessMintInstructionArgs{
		Name:   r.name,
		Symbol: r.symbol,
		Uri:    r.uri,
	}
	if r.affiliate != nil {
		var affiliate [32]byte
		copy(affiliate[:], r.affiliate.PublicKey().ToBytes())
		args.Affiliate = &affiliate
	}

	return affiliatemarket.NewProcessMintInstruction(r.accounts, args)
}

func decodeHttpRequestBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return errors.New("request body is not valid json")
	}
	return nil
}

func parseAccount(name, value string) (*common.Account, error) {
	if len(value) == 0 {
		return nil, errors.Errorf("%s is required", name)
	}

	account, err := common.NewAccountFromPublicKeyString(value)
	if err != nil {
		return nil, errors.Errorf("%s is not a public key", name)
	}
	return account, nil
}

func parseSignature(value string) (solana.Signature, error) {
	var signature solana.Signature
	decoded, err := base58.Decode(value)
	if err != nil || len(decoded) != len(signature) {
		return signature, errors.New("signature is invalid")
	}
	copy(signature[:], decoded)
	return signature, nil
}
