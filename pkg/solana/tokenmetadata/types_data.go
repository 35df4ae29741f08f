package tokenmetadata

// DataV2 is the borsh encoded token metadata supplied on creation.
type DataV2 struct {
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	Creators             *[]Creator
	Collection           *Collection
	Uses                 *Uses
}

type Creator struct {
	Address  [32]byte
	Verified bool
	Share    uint8
}

// Collection links an item to its parent collection mint. Verified can only
// be set by the collection's authority.
type Collection struct {
	Verified bool
	Key      [32]byte
}

type Uses struct {
	UseMethod uint8
	Remaining uint64
	Total     uint64
}

// CollectionDetails marks a metadata account as a sized collection parent.
//
// Encoded as the V1 variant of the on-chain enum: a zero variant byte
// followed by the size.
type CollectionDetails struct {
	Variant uint8
	Size    uint64
}

// NewSizedCollectionDetails returns V1 collection details with the provided size
func NewSizedCollectionDetails(size uint64) *CollectionDetails {
	return &CollectionDetails{Size: size}
}
