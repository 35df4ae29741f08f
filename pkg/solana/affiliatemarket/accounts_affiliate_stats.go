package affiliatemarket

import (
	"bytes"
	"fmt"
)

const (
	AffiliateStatsAccountSize = (8 + // discriminator
		8 + // total_mints
		8) // total_earned
)

var AffiliateStatsAccountDiscriminator = anchorDiscriminator("account", "AffiliateStats")

type AffiliateStatsAccount struct {
	TotalMints  uint64
	TotalEarned uint64
}

func (obj *AffiliateStatsAccount) Marshal() []byte {
	data := make([]byte, AffiliateStatsAccountSize)

	var offset int

	putDiscriminator(data, AffiliateStatsAccountDiscriminator, &offset)
	putUint64(data, obj.TotalMints, &offset)
	putUint64(data, obj.TotalEarned, &offset)

	return data
}

func (obj *AffiliateStatsAccount) Unmarshal(data []byte) error {
	if len(data) < AffiliateStatsAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	var discriminator []byte
	getDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, AffiliateStatsAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	getUint64(data, &obj.TotalMints, &offset)
	getUint64(data, &obj.TotalEarned, &offset)

	return nil
}

func (obj *AffiliateStatsAccount) String() string {
	return fmt.Sprintf(
		"AffiliateStats{total_mints=%d,total_earned=%d}",
		obj.TotalMints,
		obj.TotalEarned,
	)
}
