// Package nameservice resolves the identities people type into the roster
// members of the network.
package nameservice

import (
	"strings"

	"github.com/ardanlabs/powrace/foundation/blockchain/genesis"
)

// NameService maintains a map of roster members for lookup by id or name.
type NameService struct {
	members map[string]genesis.Member
	order   []genesis.Member
}

// New constructs a name service for the roster. Lookups ignore case.
func New(roster []genesis.Member) *NameService {
	ns := NameService{
		members: make(map[string]genesis.Member, len(roster)*2),
		order:   append([]genesis.Member(nil), roster...),
	}

	for _, member := range roster {
		ns.members[strings.ToLower(member.ID)] = member
		ns.members[strings.ToLower(member.Name)] = member
	}

	return &ns
}

// Lookup returns the member for the specified id or name.
func (ns *NameService) Lookup(identity string) (genesis.Member, bool) {
	member, exists := ns.members[strings.ToLower(strings.TrimSpace(identity))]
	return member, exists
}

// Name returns the display name for the identity. Identities that are not
// on the roster are returned as is.
func (ns *NameService) Name(identity string) string {
	member, exists := ns.Lookup(identity)
	if !exists {
		return identity
	}
	return member.Name
}

// Members returns a copy of the roster in roster order.
func (ns *NameService) Members() []genesis.Member {
	return append([]genesis.Member(nil), ns.order...)
}
