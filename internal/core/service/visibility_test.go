package service

import (
	"context"
	"sort"
	"testing"

	"github.com/trackercrm/tracker-api/internal/core/domain"
)

func seedVisibilityAgents(t *testing.T) *stubAgentRepo {
	t.Helper()
	repo := newStubAgentRepo()
	repo.add(&domain.Agent{Username: "admin", Role: domain.RoleAdministrator, Active: true})       // 1
	repo.add(&domain.Agent{Username: "boss", Role: domain.RoleBoss, Active: true})                 // 2
	repo.add(&domain.Agent{Username: "north-lead", Role: domain.RoleGroupBoss, Subgroup: "north"}) // 3
	repo.add(&domain.Agent{Username: "north-1", Role: domain.RoleAgent, Subgroup: "north"})        // 4
	repo.add(&domain.Agent{Username: "south-1", Role: domain.RoleAgent, Subgroup: "south"})        // 5
	return repo
}

func sortedIDs(ids []int64) []int64 {
	out := append([]int64(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestVisibleAgentIDsByRole(t *testing.T) {
	repo := seedVisibilityAgents(t)
	resolver := NewVisibilityResolver(repo)
	ctx := context.Background()

	cases := []struct {
		name   string
		caller *domain.Agent
		want   []int64
	}{
		{"administrator sees everyone", &domain.Agent{ID: 1, Role: domain.RoleAdministrator}, []int64{1, 2, 3, 4, 5}},
		{"boss sees everyone", &domain.Agent{ID: 2, Role: domain.RoleBoss}, []int64{1, 2, 3, 4, 5}},
		{"group boss sees its subgroup", &domain.Agent{ID: 3, Role: domain.RoleGroupBoss, Subgroup: "north"}, []int64{3, 4}},
		{"agent sees only itself", &domain.Agent{ID: 5, Role: domain.RoleAgent}, []int64{5}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := resolver.VisibleAgentIDs(ctx, tc.caller)
			if err != nil {
				t.Fatalf("VisibleAgentIDs: %v", err)
			}
			got = sortedIDs(got)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestVisibleAgentIDsGroupBossOutsideOwnSubgroup(t *testing.T) {
	// A group boss whose own record sits outside the subgroup listing must
	// still see itself, exactly once.
	repo := newStubAgentRepo()
	repo.add(&domain.Agent{Username: "west-1", Role: domain.RoleAgent, Subgroup: "west"}) // 1
	lead := repo.add(&domain.Agent{Username: "lead", Role: domain.RoleGroupBoss, Subgroup: "west"})
	resolver := NewVisibilityResolver(repo)

	ids, err := resolver.VisibleAgentIDs(context.Background(), lead)
	if err != nil {
		t.Fatalf("VisibleAgentIDs: %v", err)
	}
	var self int
	for _, id := range ids {
		if id == lead.ID {
			self++
		}
	}
	if self != 1 {
		t.Fatalf("expected the caller to appear exactly once, got %d occurrences in %v", self, ids)
	}
}

func TestVisibleAgentIDsUnknownRole(t *testing.T) {
	resolver := NewVisibilityResolver(newStubAgentRepo())
	if _, err := resolver.VisibleAgentIDs(context.Background(), &domain.Agent{ID: 1, Role: "superuser"}); err == nil {
		t.Fatal("expected an error for an unknown role")
	}
}
