package main

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"citydesk/libs/gateway"
)

type listState int

const (
	listIdle listState = iota
	listLoading
	listLoaded
	listFailed
)

func (s listState) String() string {
	switch s {
	case listLoading:
		return "loading"
	case listLoaded:
		return "loaded"
	case listFailed:
		return "failed"
	default:
		return "idle"
	}
}

// listShape declares how one entity is identified, searched and sorted.
type listShape[T any] struct {
	name        string
	id          func(T) int
	searchText  func(T) []string
	sorters     map[string]func(a, b T) int
	defaultSort string
	defaultDesc bool
}

// ListController mirrors one remote collection. Refreshes are tagged with a
// generation number and only the latest one may publish its result.
type ListController[T any] struct {
	shape listShape[T]
	fetch func(ctx context.Context, filter string) ([]T, error)
	log   *slog.Logger
	now   func() time.Time

	mu         sync.Mutex
	state      listState
	data       []T
	errMessage string
	filter     string
	generation uint64
	loadedAt   time.Time
	selected   map[int]struct{}
}

type ListSnapshot[T any] struct {
	State    listState
	Data     []T
	Error    string
	Filter   string
	LoadedAt time.Time
}

type ListQuery struct {
	Search   string
	SortKey  string
	SortDesc bool
	Page     int
	PageSize int
}

type ListView[T any] struct {
	Items    []T
	Total    int
	Page     int
	PageSize int
	SortKey  string
	SortDesc bool
	State    listState
	Error    string
}

func newListController[T any](shape listShape[T], fetch func(ctx context.Context, filter string) ([]T, error), logger *slog.Logger) *ListController[T] {
	return &ListController[T]{
		shape:    shape,
		fetch:    fetch,
		log:      logger,
		now:      time.Now,
		data:     []T{},
		selected: map[int]struct{}{},
	}
}

// Refresh reloads with the current filter.
func (lc *ListController[T]) Refresh(ctx context.Context) error {
	lc.mu.Lock()
	filter := lc.filter
	lc.mu.Unlock()
	return lc.Load(ctx, filter)
}

// Load fetches the collection for filter. A response that was overtaken by a
// newer Load is dropped and does not touch the state.
func (lc *ListController[T]) Load(ctx context.Context, filter string) error {
	lc.mu.Lock()
	lc.generation++
	generation := lc.generation
	lc.state = listLoading
	lc.filter = filter
	lc.mu.Unlock()

	items, err := lc.fetch(ctx, filter)

	lc.mu.Lock()
	defer lc.mu.Unlock()
	if generation != lc.generation {
		lc.log.Debug("discarding stale list response", "list", lc.shape.name, "generation", generation, "latest", lc.generation)
		return nil
	}
	if err != nil {
		lc.state = listFailed
		lc.errMessage = gateway.Message(err)
		return err
	}
	if items == nil {
		items = []T{}
	}
	lc.data = items
	lc.state = listLoaded
	lc.errMessage = ""
	lc.loadedAt = lc.now()
	lc.pruneSelectionLocked()
	return nil
}

// Ensure loads unless the data for filter is younger than maxAge.
func (lc *ListController[T]) Ensure(ctx context.Context, filter string, maxAge time.Duration, force bool) error {
	lc.mu.Lock()
	fresh := lc.state == listLoaded && lc.filter == filter && lc.now().Sub(lc.loadedAt) < maxAge
	lc.mu.Unlock()
	if fresh && !force {
		return nil
	}
	return lc.Load(ctx, filter)
}

func (lc *ListController[T]) Snapshot() ListSnapshot[T] {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return ListSnapshot[T]{
		State:    lc.state,
		Data:     append([]T(nil), lc.data...),
		Error:    lc.errMessage,
		Filter:   lc.filter,
		LoadedAt: lc.loadedAt,
	}
}

// Filter is the filter of the most recent Load.
func (lc *ListController[T]) Filter() string {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.filter
}

func (lc *ListController[T]) Find(id int) (T, bool) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	for _, item := range lc.data {
		if lc.shape.id(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// View derives the filtered, sorted page. The stored slice is never modified.
func (lc *ListController[T]) View(query ListQuery) ListView[T] {
	snapshot := lc.Snapshot()

	items := snapshot.Data
	needle := strings.ToLower(strings.TrimSpace(query.Search))
	if needle != "" && lc.shape.searchText != nil {
		filtered := make([]T, 0, len(items))
		for _, item := range items {
			for _, field := range lc.shape.searchText(item) {
				if strings.Contains(strings.ToLower(field), needle) {
					filtered = append(filtered, item)
					break
				}
			}
		}
		items = filtered
	}

	sortKey, desc := query.SortKey, query.SortDesc
	compare, ok := lc.shape.sorters[sortKey]
	if !ok {
		sortKey, desc = lc.shape.defaultSort, lc.shape.defaultDesc
		compare = lc.shape.sorters[sortKey]
	}
	if compare != nil {
		sort.SliceStable(items, func(i, j int) bool {
			if desc {
				return compare(items[j], items[i]) < 0
			}
			return compare(items[i], items[j]) < 0
		})
	}

	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = adminDefaultPerPage
	}
	page := query.Page
	if page < adminDefaultPage {
		page = adminDefaultPage
	}
	total := len(items)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return ListView[T]{
		Items:    items[start:end],
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		SortKey:  sortKey,
		SortDesc: desc,
		State:    snapshot.State,
		Error:    snapshot.Error,
	}
}

func (lc *ListController[T]) Toggle(id int) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	if _, ok := lc.selected[id]; ok {
		delete(lc.selected, id)
		return false
	}
	lc.selected[id] = struct{}{}
	return true
}

// SelectAll selects every loaded item.
func (lc *ListController[T]) SelectAll() {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	for _, item := range lc.data {
		lc.selected[lc.shape.id(item)] = struct{}{}
	}
}

func (lc *ListController[T]) ClearSelection() {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.selected = map[int]struct{}{}
}

func (lc *ListController[T]) IsSelected(id int) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	_, ok := lc.selected[id]
	return ok
}

func (lc *ListController[T]) Selected() []int {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	ids := make([]int, 0, len(lc.selected))
	for id := range lc.selected {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Mutate runs a remote mutation and, on success, clears the selection and
// refetches. A failed mutation leaves data and state untouched. A failed
// refetch after a successful mutation only shows up in the list state.
func (lc *ListController[T]) Mutate(ctx context.Context, mutation func(ctx context.Context) error) error {
	if err := mutation(ctx); err != nil {
		return err
	}
	lc.ClearSelection()
	if err := lc.Refresh(ctx); err != nil {
		lc.log.Warn("refetch after mutation failed", "list", lc.shape.name, "error", err)
	}
	return nil
}

func (lc *ListController[T]) pruneSelectionLocked() {
	if len(lc.selected) == 0 {
		return
	}
	present := make(map[int]struct{}, len(lc.data))
	for _, item := range lc.data {
		present[lc.shape.id(item)] = struct{}{}
	}
	for id := range lc.selected {
		if _, ok := present[id]; !ok {
			delete(lc.selected, id)
		}
	}
}
