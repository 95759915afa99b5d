package taskstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/model"
)

// Postgres implements Store over the cafe's Postgres database.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// NewPool connects and pings, so a bad DATABASE_URL fails at startup instead
// of on the first request.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

const taskColumns = `id, team_id, title, work_type, assigned_date, start_time, end_time, status, completion_date, vaccination_schedule_id`

func (p *Postgres) GetTask(ctx context.Context, id string) (model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task, err := scanTask(p.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	team, err := p.getTeam(ctx, task.TeamID)
	if err == nil {
		task.Team = team
	}
	return task, nil
}

func (p *Postgres) ListTasksForTeam(ctx context.Context, teamID string, from, to time.Time) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + `
	          FROM tasks
	          WHERE team_id = $1 AND assigned_date BETWEEN $2 AND $3
	          ORDER BY assigned_date, start_time`
	rows, err := p.pool.Query(ctx, query, teamID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list tasks for team %s: %w", teamID, err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task for team %s: %w", teamID, err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks for team %s: %w", teamID, err)
	}
	return tasks, nil
}

func (p *Postgres) UpdateTaskStatus(ctx context.Context, id string, expected, next model.TaskStatus, completionDate *time.Time) (model.Task, error) {
	query := `UPDATE tasks
	          SET status = $3, completion_date = $4, updated_at = NOW()
	          WHERE id = $1 AND status = $2
	          RETURNING ` + taskColumns
	task, err := scanTask(p.pool.QueryRow(ctx, query, id, expected, next, completionDate))
	if err == nil {
		return task, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Task{}, fmt.Errorf("update task %s status: %w", id, err)
	}
	// No row matched: either the task is gone or its status moved under us.
	var current model.TaskStatus
	probe := p.pool.QueryRow(ctx, `SELECT status FROM tasks WHERE id = $1`, id).Scan(&current)
	if errors.Is(probe, pgx.ErrNoRows) {
		return model.Task{}, ErrNotFound
	}
	if probe != nil {
		return model.Task{}, fmt.Errorf("update task %s status: %w", id, probe)
	}
	return model.Task{}, fmt.Errorf("%w: expected %s, store has %s", ErrConflict, expected, current)
}

func (p *Postgres) ListTeamsForActor(ctx context.Context, actorID string) ([]model.Team, error) {
	query := `SELECT t.id, t.name, l.id, l.name, l.email
	          FROM teams t
	          JOIN team_members tm ON tm.team_id = t.id
	          LEFT JOIN staff l ON l.id = t.leader_id
	          WHERE tm.staff_id = $1
	          ORDER BY t.name`
	rows, err := p.pool.Query(ctx, query, actorID)
	if err != nil {
		return nil, fmt.Errorf("list teams for actor %s: %w", actorID, err)
	}
	defer rows.Close()

	var teams []model.Team
	for rows.Next() {
		var team model.Team
		var leaderID, leaderName, leaderEmail *string
		if err := rows.Scan(&team.ID, &team.Name, &leaderID, &leaderName, &leaderEmail); err != nil {
			return nil, fmt.Errorf("scan team for actor %s: %w", actorID, err)
		}
		if leaderID != nil {
			team.Leader = &model.TeamMember{ID: *leaderID, Name: deref(leaderName), Email: deref(leaderEmail)}
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list teams for actor %s: %w", actorID, err)
	}
	return teams, nil
}

func (p *Postgres) getTeam(ctx context.Context, teamID string) (*model.Team, error) {
	query := `SELECT t.id, t.name, l.id, l.name, l.email
	          FROM teams t
	          LEFT JOIN staff l ON l.id = t.leader_id
	          WHERE t.id = $1`
	var team model.Team
	var leaderID, leaderName, leaderEmail *string
	err := p.pool.QueryRow(ctx, query, teamID).Scan(&team.ID, &team.Name, &leaderID, &leaderName, &leaderEmail)
	if err != nil {
		return nil, err
	}
	if leaderID != nil {
		team.Leader = &model.TeamMember{ID: *leaderID, Name: deref(leaderName), Email: deref(leaderEmail)}
	}
	return &team, nil
}

func scanTask(row pgx.Row) (model.Task, error) {
	var (
		task       model.Task
		scheduleID *string
	)
	err := row.Scan(
		&task.ID,
		&task.TeamID,
		&task.Title,
		&task.WorkType,
		&task.AssignedDate,
		&task.StartTime,
		&task.EndTime,
		&task.Status,
		&task.CompletionDate,
		&scheduleID,
	)
	if err != nil {
		return model.Task{}, err
	}
	task.VaccinationScheduleID = deref(scheduleID)
	return task, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
