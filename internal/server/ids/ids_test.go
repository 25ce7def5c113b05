package ids

import (
	"testing"

	"github.com/dmitrijs2005/govkeeper/internal/server/models"
)

func TestDeposit_Deterministic(t *testing.T) {
	a := Deposit("alice", models.KindLocked, 0)
	b := Deposit("alice", models.KindLocked, 0)
	if a != b {
		t.Fatalf("same inputs must derive the same id: %s vs %s", a, b)
	}
}

func TestDeposit_DistinctAcrossInputs(t *testing.T) {
	seen := map[string]string{}
	cases := map[string]string{
		"other owner": Deposit("bob", models.KindLocked, 0),
		"other kind":  Deposit("alice", models.KindVest, 0),
		"other index": Deposit("alice", models.KindLocked, 1),
		"base":        Deposit("alice", models.KindLocked, 0),
	}
	for name, id := range cases {
		if prev, ok := seen[id]; ok {
			t.Fatalf("collision between %q and %q: %s", name, prev, id)
		}
		seen[id] = name
	}
}

func TestTickets_DeriveFromDeposit(t *testing.T) {
	dep := Deposit("alice", models.KindVest, 3)

	if ClaimTicket(dep) != ClaimTicket(dep) {
		t.Fatal("claim ticket id must be deterministic")
	}
	if ClaimTicket(dep) == dep {
		t.Fatal("claim ticket id must differ from deposit id")
	}

	r0 := RedeemTicket(dep, 0)
	r1 := RedeemTicket(dep, 1)
	if r0 == r1 {
		t.Fatal("redeem ticket ids must differ per redeem index")
	}
	if RedeemTicket(dep, 0) != r0 {
		t.Fatal("redeem ticket id must be deterministic")
	}
}
