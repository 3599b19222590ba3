package domain

import "strings"

// Burn/zero addresses excluded from wallet analysis
const (
	ZeroAddress = "0x0000000000000000000000000000000000000000"
	DeadAddress = "0x000000000000000000000000000000000000dead"
)

// NormalizeAddress lowers the address for internal set membership.
// Original case is kept in the external payload next to the lowered form
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

func IsBurnAddress(addr string) bool {
	low := NormalizeAddress(addr)
	return low == ZeroAddress || low == DeadAddress
}

// Immutable set of lowercase DEX pool/router addresses.
// Populated once from config at startup, never mutated after
type KnownAddressSet struct {
	members map[string]struct{}
}

func NewKnownAddressSet(addrs []string) *KnownAddressSet {
	m := make(map[string]struct{}, len(addrs))
	for _, a := range addrs {
		if a == "" {
			continue
		}
		m[NormalizeAddress(a)] = struct{}{}
	}
	return &KnownAddressSet{members: m}
}

// Contains is case-insensitive
func (s *KnownAddressSet) Contains(addr string) bool {
	if s == nil {
		return false
	}
	_, ok := s.members[NormalizeAddress(addr)]
	return ok
}

func (s *KnownAddressSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.members)
}
