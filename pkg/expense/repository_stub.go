package expense

import (
	"context"
	"sort"
)

type RepositoryStub struct {
	nextId      int
	categories  map[int]Category
	items       map[int]Item
	shares      map[int][]share
	nextShareId int
}

func NewRepositoryStub() *RepositoryStub {
	s := &RepositoryStub{}
	s.Cleanup()
	return s
}

func (s *RepositoryStub) Cleanup() {
	s.nextId = 0
	s.nextShareId = 0
	s.categories = map[int]Category{}
	s.items = map[int]Item{}
	s.shares = map[int][]share{}
}

// WithTransaction runs fn directly, the stub has nothing to roll back.
func (s *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	return fn(s)
}

func (s *RepositoryStub) ListCategories(ctx context.Context, planId int) ([]Category, error) {
	result := make([]Category, 0)
	for _, c := range s.categories {
		if c.PlanId == planId {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Id < result[j].Id })
	return result, nil
}

func (s *RepositoryStub) GetCategory(ctx context.Context, planId int, categoryId int) (Category, error) {
	c, ok := s.categories[categoryId]
	if !ok || c.PlanId != planId {
		return Category{}, ErrCategoryNotFound
	}
	return c, nil
}

func (s *RepositoryStub) CreateCategory(ctx context.Context, c Category) (Category, error) {
	s.nextId++
	c.Id = s.nextId
	s.categories[c.Id] = c
	return c, nil
}

func (s *RepositoryStub) DeleteCategory(ctx context.Context, planId int, categoryId int) (bool, error) {
	if _, err := s.GetCategory(ctx, planId, categoryId); err != nil {
		return false, nil
	}
	delete(s.categories, categoryId)
	for id, item := range s.items {
		if item.CategoryId != nil && *item.CategoryId == categoryId {
			item.CategoryId = nil
			s.items[id] = item
		}
	}
	return true, nil
}

func (s *RepositoryStub) ListItems(ctx context.Context, planId int) ([]Item, error) {
	result := make([]Item, 0)
	for _, item := range s.items {
		if item.PlanId == planId {
			result = append(result, s.withParticipants(item))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Id < result[j].Id })
	return result, nil
}

func (s *RepositoryStub) GetItem(ctx context.Context, planId int, itemId int) (Item, error) {
	item, ok := s.items[itemId]
	if !ok || item.PlanId != planId {
		return Item{}, ErrExpenseItemNotFound
	}
	return s.withParticipants(item), nil
}

func (s *RepositoryStub) CreateItem(ctx context.Context, item Item) (Item, error) {
	s.nextId++
	item.Id = s.nextId
	item.ParticipantIds = nil
	s.items[item.Id] = item
	return item, nil
}

func (s *RepositoryStub) UpdateItem(ctx context.Context, item Item) error {
	if _, err := s.GetItem(ctx, item.PlanId, item.Id); err != nil {
		return err
	}
	item.ParticipantIds = nil
	s.items[item.Id] = item
	return nil
}

func (s *RepositoryStub) DeleteItem(ctx context.Context, planId int, itemId int) (bool, error) {
	if _, err := s.GetItem(ctx, planId, itemId); err != nil {
		return false, nil
	}
	delete(s.items, itemId)
	delete(s.shares, itemId)
	return true, nil
}

func (s *RepositoryStub) listShares(ctx context.Context, itemId int) ([]share, error) {
	return append([]share(nil), s.shares[itemId]...), nil
}

func (s *RepositoryStub) insertShare(ctx context.Context, planId int, itemId int, sh share) error {
	s.nextShareId++
	sh.Id = s.nextShareId
	s.shares[itemId] = append(s.shares[itemId], sh)
	return nil
}

func (s *RepositoryStub) updateShare(ctx context.Context, sh share) error {
	for itemId, shares := range s.shares {
		for i := range shares {
			if shares[i].Id == sh.Id {
				s.shares[itemId][i] = sh
			}
		}
	}
	return nil
}

func (s *RepositoryStub) deleteShares(ctx context.Context, ids []int) error {
	remove := map[int]bool{}
	for _, id := range ids {
		remove[id] = true
	}
	for itemId, shares := range s.shares {
		kept := shares[:0]
		for _, sh := range shares {
			if !remove[sh.Id] {
				kept = append(kept, sh)
			}
		}
		s.shares[itemId] = kept
	}
	return nil
}

func (s *RepositoryStub) withParticipants(item Item) Item {
	ids := make([]int, 0, len(s.shares[item.Id]))
	for _, sh := range s.shares[item.Id] {
		ids = append(ids, sh.ParticipantId)
	}
	sort.Ints(ids)
	item.ParticipantIds = ids
	return item
}
