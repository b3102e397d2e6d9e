package storage

import (
	"sync"

	"github.com/hoshinet/pagelate/internal/models"
)

// PageQueue is the in-memory, insertion-ordered queue of uploaded pages.
// All state is scoped to the process lifetime; nothing is persisted.
type PageQueue struct {
	pages map[string]*models.Page
	order []string
	mu    sync.RWMutex
}

func New() *PageQueue {
	return &PageQueue{
		pages: make(map[string]*models.Page),
	}
}

// Add appends a page to the end of the queue.
func (q *PageQueue) Add(page *models.Page) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, exists := q.pages[page.ID]; exists {
		return
	}
	q.pages[page.ID] = page
	q.order = append(q.order, page.ID)
}

func (q *PageQueue) Get(id string) (*models.Page, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	page, exists := q.pages[id]
	return page, exists
}

// List returns the pages in insertion order.
func (q *PageQueue) List() []*models.Page {
	q.mu.RLock()
	defer q.mu.RUnlock()

	result := make([]*models.Page, 0, len(q.order))
	for _, id := range q.order {
		result = append(result, q.pages[id])
	}
	return result
}

// Remove deletes a page and releases its image payloads.
func (q *PageQueue) Remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	page, exists := q.pages[id]
	if !exists {
		return false
	}
	delete(q.pages, id)
	for i, pid := range q.order {
		if pid == id {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
	// Drop payload references so the backing buffers can be collected.
	page.Source.Data = nil
	page.Output = nil
	return true
}

// Clear empties the queue.
func (q *PageQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, page := range q.pages {
		page.Source.Data = nil
		page.Output = nil
	}
	q.pages = make(map[string]*models.Page)
	q.order = nil
}

func (q *PageQueue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.order)
}
