package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/lifecycle"
	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/model"
	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/reconcile"
	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/taskstore"
)

// Loader runs the full load pipeline: resolve the actor's team set, fan out
// per-team fetches, merge, sweep, enrich and sort.
type Loader struct {
	store      taskstore.Store
	lifecycle  *lifecycle.Engine
	reconciler *reconcile.Engine
	loc        *time.Location
	now        func() time.Time
}

// LoadResult is the outcome of a load: the best data obtainable from the
// fetches that succeeded, plus one warning per team fetch that did not.
type LoadResult struct {
	Tasks    []model.EnrichedTask     `json:"tasks"`
	Warnings []model.TeamFetchWarning `json:"warnings"`
}

func New(store taskstore.Store, lc *lifecycle.Engine, rec *reconcile.Engine, loc *time.Location) *Loader {
	return &Loader{store: store, lifecycle: lc, reconciler: rec, loc: loc, now: time.Now}
}

// LoadTasks loads the actor's tasks for the window. When teamID is set it
// must be a team the actor belongs to, otherwise the result is empty; when
// blank, every team the actor belongs to is loaded. A hard error is returned
// only when listing teams fails or every team fetch fails.
func (l *Loader) LoadTasks(ctx context.Context, window Window, teamID string, actor model.Actor) (LoadResult, error) {
	teams, err := l.store.ListTeamsForActor(ctx, actor.ID)
	if err != nil {
		return LoadResult{}, fmt.Errorf("list teams for actor %s: %w", actor.ID, err)
	}
	members := make(map[string]bool, len(teams))
	for _, team := range teams {
		members[team.ID] = true
	}

	var ids []string
	if teamID != "" {
		if !members[teamID] {
			return LoadResult{}, nil
		}
		ids = []string{teamID}
	} else {
		for _, team := range teams {
			ids = append(ids, team.ID)
		}
	}
	if len(ids) == 0 {
		return LoadResult{}, nil
	}
	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}

	merged, warnings, err := l.fetchAll(ctx, ids, window)
	if err != nil {
		return LoadResult{}, err
	}

	tasks := make([]model.Task, 0, len(merged))
	for _, task := range merged {
		// Defense against payload drift: a fetch may not smuggle in tasks
		// owned by teams outside the resolved set.
		if !selected[task.TeamID] {
			continue
		}
		tasks = append(tasks, task)
	}

	tasks = l.lifecycle.Sweep(tasks, l.now().In(l.loc))
	enriched := l.reconciler.Enrich(ctx, tasks)

	sort.Slice(enriched, func(i, j int) bool {
		if !enriched[i].AssignedDate.Equal(enriched[j].AssignedDate) {
			return enriched[i].AssignedDate.Before(enriched[j].AssignedDate)
		}
		return enriched[i].StartTime < enriched[j].StartTime
	})
	return LoadResult{Tasks: enriched, Warnings: warnings}, nil
}

// fetchAll fetches each team's tasks in parallel, deduplicating by task id
// with last write winning. An abandoned caller gets ctx.Err back immediately;
// the dispatched fetches are deliberately not cancelled and finish in the
// background with their results dropped.
func (l *Loader) fetchAll(ctx context.Context, ids []string, window Window) (map[string]model.Task, []model.TeamFetchWarning, error) {
	fetchCtx := context.WithoutCancel(ctx)

	var (
		mu       sync.Mutex
		merged   = make(map[string]model.Task)
		warnings []model.TeamFetchWarning
		wg       sync.WaitGroup
	)
	for _, id := range ids {
		wg.Add(1)
		go func(teamID string) {
			defer wg.Done()
			tasks, err := l.store.ListTasksForTeam(fetchCtx, teamID, window.From, window.To)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				warnings = append(warnings, model.TeamFetchWarning{TeamID: teamID, Reason: err.Error()})
				return
			}
			for _, task := range tasks {
				merged[task.ID] = task
			}
		}(id)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case <-done:
	}

	if len(warnings) == len(ids) {
		return nil, nil, fmt.Errorf("every team fetch failed (%d teams)", len(ids))
	}
	sort.Slice(warnings, func(i, j int) bool { return warnings[i].TeamID < warnings[j].TeamID })
	return merged, warnings, nil
}
