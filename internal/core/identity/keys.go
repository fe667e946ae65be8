package identity

import (
	"encoding/binary"

	"github.com/polymesh/engine/internal/core/state"
	"github.com/polymesh/engine/pkg/types"
)

const moduleName = "identity"

var (
	keyToDidPrefix   = state.Prefix(moduleName, "key_to_did")
	didRecordsPrefix = state.Prefix(moduleName, "did_records")
	claimsPrefix     = state.Prefix(moduleName, "claims")
	nonceKey         = state.Key(state.Prefix(moduleName, "nonce"))
)

func claimTypePart(t types.ClaimType, customId uint32) []byte {
	out := []byte{byte(t)}
	if t == types.ClaimTypeCustom {
		out = binary.BigEndian.AppendUint32(out, customId)
	}
	return out
}

// claimKey (目标, 类别, 发行方, 作用域)
func claimKey(target types.IdentityId, claim types.Claim, issuer types.IdentityId) []byte {
	return state.Key(claimsPrefix,
		target.KeyBytes(),
		claimTypePart(claim.Type, claim.CustomId),
		issuer.KeyBytes(),
		claim.Scope.KeyBytes(),
	)
}
