package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"taskhub/internal/auth"
	"taskhub/internal/cache"
	"taskhub/internal/model"
	"taskhub/internal/repository"
)

const statsCacheTTL = 30 * time.Second

// CompletionSummary is the overall completion view of an owner's tasks.
type CompletionSummary struct {
	TotalTasks                  int    `json:"totalTasks"`
	TasksCompleted              int    `json:"tasksCompleted"`
	TasksCompletedPercentage    string `json:"tasksCompletedPercentage"`
	TasksPending                int    `json:"tasksPending"`
	TasksPendingPercentage      string `json:"tasksPendingPercentage"`
	AverageTimePerCompletedTask string `json:"averageTimePerCompletedTask"`
}

// PendingAggregate sums wall-clock and estimated hours over pending tasks.
type PendingAggregate struct {
	PendingTasks          int    `json:"pendingTasks"`
	TotalTimeElapsedHours string `json:"totalTimeElapsedHours"`
	TotalEstimatedHours   string `json:"totalEstimatedHours"`
}

// PriorityStats is the per-level entry of the priority breakdown.
type PriorityStats struct {
	Priority         int    `json:"priority"`
	TotalTasks       int    `json:"totalTasks"`
	PendingTasks     int    `json:"pendingTasks"`
	TimeElapsedHours string `json:"timeElapsedHours"`
	EstimatedHours   string `json:"estimatedHours"`
}

// PriorityBreakdown lists per-priority stats in ascending priority order.
type PriorityBreakdown struct {
	TasksByPriority []PriorityStats `json:"tasksByPriority"`
}

// StatsService computes read-only aggregate views over the authenticated
// identity's tasks. Tasks missing the timestamps a figure needs are excluded
// from that figure, never counted as zero-duration.
type StatsService interface {
	CompletionSummary(ctx context.Context, ident auth.Identity) (*CompletionSummary, error)
	PendingAggregate(ctx context.Context, ident auth.Identity) (*PendingAggregate, error)
	PriorityBreakdown(ctx context.Context, ident auth.Identity) (*PriorityBreakdown, error)
}

type statsService struct {
	taskRepo repository.TaskRepository
	cache    *cache.Client
	now      func() time.Time
}

// NewStatsService creates a new statistics service.
func NewStatsService(taskRepo repository.TaskRepository, cache *cache.Client) StatsService {
	return &statsService{
		taskRepo: taskRepo,
		cache:    cache,
		now:      time.Now,
	}
}

func summaryCacheKey(ownerID uuid.UUID) string {
	return fmt.Sprintf("stats:summary:%s", ownerID)
}

func pendingCacheKey(ownerID uuid.UUID) string {
	return fmt.Sprintf("stats:pending:%s", ownerID)
}

func priorityCacheKey(ownerID uuid.UUID) string {
	return fmt.Sprintf("stats:priority:%s", ownerID)
}

// statsCacheKeys lists every cached view for an owner; task writes delete
// them all.
func statsCacheKeys(ownerID uuid.UUID) []string {
	return []string{
		summaryCacheKey(ownerID),
		pendingCacheKey(ownerID),
		priorityCacheKey(ownerID),
	}
}

// CompletionSummary reports totals, completion percentages, and the average
// elapsed time of finished tasks carrying both timestamps.
func (s *statsService) CompletionSummary(ctx context.Context, ident auth.Identity) (*CompletionSummary, error) {
	key := summaryCacheKey(ident.UserID)
	if data, _ := s.cache.Get(ctx, key); data != nil {
		var cached CompletionSummary
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	tasks, err := s.taskRepo.FindAllByOwner(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}

	summary := buildCompletionSummary(tasks)
	if payload, err := json.Marshal(summary); err == nil {
		_ = s.cache.Set(ctx, key, payload, statsCacheTTL)
	}
	return summary, nil
}

// PendingAggregate reports the pending count plus summed elapsed and
// estimated hours across pending tasks.
func (s *statsService) PendingAggregate(ctx context.Context, ident auth.Identity) (*PendingAggregate, error) {
	key := pendingCacheKey(ident.UserID)
	if data, _ := s.cache.Get(ctx, key); data != nil {
		var cached PendingAggregate
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	tasks, err := s.taskRepo.FindAllByOwner(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}

	aggregate := buildPendingAggregate(tasks, s.now())
	if payload, err := json.Marshal(aggregate); err == nil {
		_ = s.cache.Set(ctx, key, payload, statsCacheTTL)
	}
	return aggregate, nil
}

// PriorityBreakdown reports per-priority totals ordered by priority
// ascending, restricted to levels that have tasks.
func (s *statsService) PriorityBreakdown(ctx context.Context, ident auth.Identity) (*PriorityBreakdown, error) {
	key := priorityCacheKey(ident.UserID)
	if data, _ := s.cache.Get(ctx, key); data != nil {
		var cached PriorityBreakdown
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	tasks, err := s.taskRepo.FindAllByOwner(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}

	breakdown := buildPriorityBreakdown(tasks, s.now())
	if payload, err := json.Marshal(breakdown); err == nil {
		_ = s.cache.Set(ctx, key, payload, statsCacheTTL)
	}
	return breakdown, nil
}

func buildCompletionSummary(tasks []model.Task) *CompletionSummary {
	total := len(tasks)
	completed := 0
	pending := 0
	var completedDuration time.Duration
	completedWithTimes := 0

	for _, task := range tasks {
		switch task.Status {
		case model.TaskStatusFinished:
			completed++
			if task.StartTime != nil && task.EndTime != nil {
				completedDuration += task.EndTime.Sub(*task.StartTime)
				completedWithTimes++
			}
		case model.TaskStatusPending:
			pending++
		}
	}

	average := "0s"
	if completedWithTimes > 0 {
		average = (completedDuration / time.Duration(completedWithTimes)).String()
	}

	return &CompletionSummary{
		TotalTasks:                  total,
		TasksCompleted:              completed,
		TasksCompletedPercentage:    percentage(completed, total),
		TasksPending:                pending,
		TasksPendingPercentage:      percentage(pending, total),
		AverageTimePerCompletedTask: average,
	}
}

func buildPendingAggregate(tasks []model.Task, now time.Time) *PendingAggregate {
	pending := 0
	var elapsed, estimated time.Duration

	for _, task := range tasks {
		if task.Status != model.TaskStatusPending {
			continue
		}
		pending++
		if task.StartTime != nil {
			elapsed += now.Sub(*task.StartTime)
			if task.EndTime != nil {
				estimated += task.EndTime.Sub(*task.StartTime)
			}
		}
	}

	return &PendingAggregate{
		PendingTasks:          pending,
		TotalTimeElapsedHours: hours(elapsed),
		TotalEstimatedHours:   hours(estimated),
	}
}

func buildPriorityBreakdown(tasks []model.Task, now time.Time) *PriorityBreakdown {
	type levelTotals struct {
		total     int
		pending   int
		elapsed   time.Duration
		estimated time.Duration
	}

	levels := map[int]*levelTotals{}
	for _, task := range tasks {
		totals, ok := levels[task.Priority]
		if !ok {
			totals = &levelTotals{}
			levels[task.Priority] = totals
		}
		totals.total++
		if task.Status != model.TaskStatusPending {
			continue
		}
		totals.pending++
		if task.StartTime != nil {
			totals.elapsed += now.Sub(*task.StartTime)
			if task.EndTime != nil {
				totals.estimated += task.EndTime.Sub(*task.StartTime)
			}
		}
	}

	priorities := make([]int, 0, len(levels))
	for priority := range levels {
		priorities = append(priorities, priority)
	}
	sort.Ints(priorities)

	breakdown := &PriorityBreakdown{TasksByPriority: make([]PriorityStats, 0, len(priorities))}
	for _, priority := range priorities {
		totals := levels[priority]
		breakdown.TasksByPriority = append(breakdown.TasksByPriority, PriorityStats{
			Priority:         priority,
			TotalTasks:       totals.total,
			PendingTasks:     totals.pending,
			TimeElapsedHours: hours(totals.elapsed),
			EstimatedHours:   hours(totals.estimated),
		})
	}
	return breakdown
}

// percentage renders part/total as a fixed two-decimal percentage. A zero
// total is defined as "0.00" rather than a division artifact.
func percentage(part, total int) string {
	if total == 0 {
		return "0.00"
	}
	return decimal.NewFromInt(int64(part) * 100).
		Div(decimal.NewFromInt(int64(total))).
		StringFixed(2)
}

func hours(d time.Duration) string {
	return decimal.NewFromFloat(d.Hours()).StringFixed(2)
}
