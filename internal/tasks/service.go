// Package tasks wraps the Google Tasks API for read-only listing of task
// lists and their tasks.
package tasks

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/api/option"
	tasksapi "google.golang.org/api/tasks/v1"

	"github.com/ahd-playgrounds/google-task-cli/internal/logger"
)

type Service struct {
	svc *tasksapi.Service
}

func NewService(ctx context.Context, opts ...option.ClientOption) (*Service, error) {
	svc, err := tasksapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Service{svc: svc}, nil
}

// ListWithTasks pairs a task list with its tasks so output can be grouped
// per list regardless of fetch completion order.
type ListWithTasks struct {
	List  *tasksapi.TaskList
	Tasks []*tasksapi.Task
}

// ListTaskLists returns all task lists of the authenticated user.
func (s *Service) ListTaskLists(ctx context.Context) ([]*tasksapi.TaskList, error) {
	lists, err := s.svc.Tasklists.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list task lists: %w", err)
	}
	return lists.Items, nil
}

// ListTasks returns the tasks of one list.
func (s *Service) ListTasks(ctx context.Context, listID string) ([]*tasksapi.Task, error) {
	tasks, err := s.svc.Tasks.List(listID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks for list %s: %w", listID, err)
	}
	return tasks.Items, nil
}

// FetchAll lists every task list and fetches each list's tasks in a joint
// fan-out, one goroutine per list. The fetches are independent reads with
// no ordering requirement; results keep the task-list order of the API.
func (s *Service) FetchAll(ctx context.Context) ([]ListWithTasks, error) {
	lists, err := s.ListTaskLists(ctx)
	if err != nil {
		return nil, err
	}

	logger.Info("fetching tasks", "list_count", len(lists))

	results := make([]ListWithTasks, len(lists))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for i, list := range lists {
		wg.Add(1)
		go func(i int, list *tasksapi.TaskList) {
			defer wg.Done()

			items, err := s.ListTasks(ctx, list.Id)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}

			// Each goroutine writes its own slot only.
			results[i] = ListWithTasks{List: list, Tasks: items}
			logger.Debug("fetched tasks", "list", list.Title, "count", len(items))
		}(i, list)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
