package store

import (
	"context"

	"github.com/dcm-project/orchestration-router/internal/store/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvocationFilter contains optional fields for filtering invocation queries.
// nil fields are ignored (not filtered).
type InvocationFilter struct {
	Provider *model.Provider
	Status   *string
}

// Pagination contains options for paginated queries.
type Pagination struct {
	Limit  int
	Offset int
}

type Invocation interface {
	Create(ctx context.Context, invocation model.Invocation) (*model.Invocation, error)
	List(ctx context.Context, filter *InvocationFilter, pagination *Pagination) (model.InvocationList, error)
	Count(ctx context.Context, filter *InvocationFilter) (int64, error)
}

type InvocationStore struct {
	db *gorm.DB
}

var _ Invocation = (*InvocationStore)(nil)

func NewInvocation(db *gorm.DB) Invocation {
	return &InvocationStore{db: db}
}

func (s *InvocationStore) Create(ctx context.Context, invocation model.Invocation) (*model.Invocation, error) {
	if err := s.db.WithContext(ctx).Clauses(clause.Returning{}).Create(&invocation).Error; err != nil {
		return nil, err
	}
	return &invocation, nil
}

func (s *InvocationStore) List(ctx context.Context, filter *InvocationFilter, pagination *Pagination) (model.InvocationList, error) {
	var invocations model.InvocationList
	query := s.applyFilter(s.db.WithContext(ctx), filter)

	// Newest first: the log is read for recent activity
	query = query.Order("create_time DESC, id DESC")

	if pagination != nil {
		query = query.Limit(pagination.Limit).Offset(pagination.Offset)
	}

	if err := query.Find(&invocations).Error; err != nil {
		return nil, err
	}
	return invocations, nil
}

func (s *InvocationStore) Count(ctx context.Context, filter *InvocationFilter) (int64, error) {
	var count int64
	query := s.applyFilter(s.db.WithContext(ctx).Model(&model.Invocation{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *InvocationStore) applyFilter(query *gorm.DB, filter *InvocationFilter) *gorm.DB {
	if filter == nil {
		return query
	}
	if filter.Provider != nil {
		query = query.Where(&model.Invocation{Provider: *filter.Provider})
	}
	if filter.Status != nil {
		query = query.Where(&model.Invocation{Status: *filter.Status})
	}
	return query
}
