package permission

import (
	"context"
	"strings"

	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/model"
)

// TeamDirectory lists the teams an actor belongs to.
type TeamDirectory interface {
	ListTeamsForActor(ctx context.Context, actorID string) ([]model.Team, error)
}

// Guard decides whether an actor may mutate a task: only the leader of the
// task's owning team may. The check is advisory for callers that want to skip
// a doomed round trip, and mandatory inside the lifecycle engine.
type Guard struct {
	teams TeamDirectory
}

func NewGuard(teams TeamDirectory) *Guard {
	return &Guard{teams: teams}
}

func (g *Guard) CanActorMutate(ctx context.Context, task model.Task, actor model.Actor) bool {
	team := g.ResolveTeam(ctx, task, actor)
	if team == nil || team.Leader == nil {
		return false
	}
	email := normalizeEmail(actor.Email)
	if email == "" {
		return false
	}
	return email == normalizeEmail(team.Leader.Email)
}

// ResolveTeam resolves a task's owning team with a fixed precedence: the
// embedded reference on the task wins; otherwise the team is looked up by id
// among the actor's own teams. Returns nil when neither source resolves.
func (g *Guard) ResolveTeam(ctx context.Context, task model.Task, actor model.Actor) *model.Team {
	if task.Team != nil {
		return task.Team
	}
	teams, err := g.teams.ListTeamsForActor(ctx, actor.ID)
	if err != nil {
		return nil
	}
	for i := range teams {
		if teams[i].ID == task.TeamID {
			return &teams[i]
		}
	}
	return nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
