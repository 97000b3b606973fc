package ports

import "tinyprotocol/internal/types"

type KeyPolicyPort interface {
	ComparisonKeys() []types.ComparisonKey
}
