package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RefreshTask tracks a background refresh pass for one owner. Only one task
// per owner runs at a time; starting a new one cancels the previous.
type RefreshTask struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"` // "running", "done", "error", "cancelled"
	Total     int             `json:"total"`
	Current   int             `json:"current"`
	FeedURL   string          `json:"feedUrl,omitempty"`
	Summary   *RefreshSummary `json:"summary,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// RefreshTaskService records per-owner refresh progress. Update, Complete and
// Fail carry the task ID from Start and are ignored when a newer task has
// replaced that ID or the task already left the running state, so a
// superseded or cancelled pass can never overwrite current status.
type RefreshTaskService interface {
	Start(ownerID string) (string, context.Context)
	Update(ownerID, taskID string, current, total int, feedURL string)
	Complete(ownerID, taskID string, summary RefreshSummary)
	Fail(ownerID, taskID string, err error)
	Get(ownerID string) *RefreshTask
	Cancel(ownerID string) bool
}

type ownerTask struct {
	task   *RefreshTask
	cancel context.CancelFunc
}

type refreshTaskManager struct {
	mu    sync.RWMutex
	tasks map[string]*ownerTask
}

func NewRefreshTaskService() RefreshTaskService {
	return &refreshTaskManager{tasks: make(map[string]*ownerTask)}
}

func (m *refreshTaskManager) Start(ownerID string) (string, context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.tasks[ownerID]; ok && existing.cancel != nil {
		existing.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.New().String()
	m.tasks[ownerID] = &ownerTask{
		task: &RefreshTask{
			ID:        id,
			Status:    "running",
			CreatedAt: time.Now(),
		},
		cancel: cancel,
	}
	return id, ctx
}

// current returns the owner's task only when it still carries taskID.
// Callers must hold the lock.
func (m *refreshTaskManager) current(ownerID, taskID string) *RefreshTask {
	entry, ok := m.tasks[ownerID]
	if !ok || entry.task.ID != taskID {
		return nil
	}
	return entry.task
}

func (m *refreshTaskManager) Update(ownerID, taskID string, current, total int, feedURL string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if task := m.current(ownerID, taskID); task != nil && task.Status == "running" {
		task.Current = current
		task.Total = total
		task.FeedURL = feedURL
	}
}

func (m *refreshTaskManager) Complete(ownerID, taskID string, summary RefreshSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if task := m.current(ownerID, taskID); task != nil && task.Status == "running" {
		task.Status = "done"
		task.Summary = &summary
		task.FeedURL = ""
	}
}

func (m *refreshTaskManager) Fail(ownerID, taskID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if task := m.current(ownerID, taskID); task != nil && task.Status == "running" {
		task.Status = "error"
		task.Error = err.Error()
		task.FeedURL = ""
	}
}

func (m *refreshTaskManager) Get(ownerID string) *RefreshTask {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.tasks[ownerID]
	if !ok {
		return nil
	}

	task := *entry.task
	if entry.task.Summary != nil {
		summary := *entry.task.Summary
		task.Summary = &summary
	}
	return &task
}

func (m *refreshTaskManager) Cancel(ownerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.tasks[ownerID]
	if !ok || entry.task.Status != "running" {
		return false
	}
	if entry.cancel != nil {
		entry.cancel()
	}
	entry.task.Status = "cancelled"
	entry.task.FeedURL = ""
	return true
}
