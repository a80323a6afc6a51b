package store

import (
	"context"
	"errors"

	"github.com/dcm-project/orchestration-router/internal/store/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPolicyNotFound  = errors.New("policy not found")
	ErrPolicyNameTaken = errors.New("policy name already taken")
	ErrNoActivePolicy  = errors.New("no active policy")
)

type Policy interface {
	List(ctx context.Context) (model.PolicyList, error)
	Create(ctx context.Context, policy model.Policy) (*model.Policy, error)
	GetByName(ctx context.Context, name string) (*model.Policy, error)
	GetActive(ctx context.Context) (*model.Policy, error)
	Activate(ctx context.Context, name string) (*model.Policy, error)
	UpdateTarget(ctx context.Context, name string, provider model.Provider, target string) (*model.Policy, error)
	Delete(ctx context.Context, name string) error
	Count(ctx context.Context) (int64, error)
}

type PolicyStore struct {
	db *gorm.DB
}

var _ Policy = (*PolicyStore)(nil)

func NewPolicy(db *gorm.DB) Policy {
	return &PolicyStore{db: db}
}

func (s *PolicyStore) List(ctx context.Context) (model.PolicyList, error) {
	var policies model.PolicyList
	// Consistent ordering: oldest policy first
	err := s.db.WithContext(ctx).Order("create_time ASC, id ASC").Find(&policies).Error
	if err != nil {
		return nil, err
	}
	return policies, nil
}

func (s *PolicyStore) Create(ctx context.Context, policy model.Policy) (*model.Policy, error) {
	if err := s.db.WithContext(ctx).Clauses(clause.Returning{}).Create(&policy).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPolicyNameTaken
		}
		return nil, err
	}
	return &policy, nil
}

func (s *PolicyStore) GetByName(ctx context.Context, name string) (*model.Policy, error) {
	var policy model.Policy
	if err := s.db.WithContext(ctx).Where(&model.Policy{Name: name}).First(&policy).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPolicyNotFound
		}
		return nil, err
	}
	return &policy, nil
}

func (s *PolicyStore) GetActive(ctx context.Context) (*model.Policy, error) {
	var policy model.Policy
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).First(&policy).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActivePolicy
		}
		return nil, err
	}
	return &policy, nil
}

// Activate atomically deactivates the current active policy and activates
// the named one. It is the only writer of is_active, so readers never
// observe zero or two active policies.
func (s *PolicyStore) Activate(ctx context.Context, name string) (*model.Policy, error) {
	var activated model.Policy
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&model.Policy{Name: name}).First(&activated).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPolicyNotFound
			}
			return err
		}

		if err := tx.Model(&model.Policy{}).
			Where("is_active = ?", true).
			Where("id <> ?", activated.ID).
			Update("is_active", false).Error; err != nil {
			return err
		}

		if err := tx.Model(&activated).Update("is_active", true).Error; err != nil {
			return err
		}
		activated.IsActive = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &activated, nil
}

func (s *PolicyStore) UpdateTarget(ctx context.Context, name string, provider model.Provider, target string) (*model.Policy, error) {
	policy, err := s.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	policy.SetTarget(provider, target)
	if err := s.db.WithContext(ctx).Model(policy).Update(targetColumn(provider), target).Error; err != nil {
		return nil, err
	}
	return policy, nil
}

func (s *PolicyStore) Delete(ctx context.Context, name string) error {
	result := s.db.WithContext(ctx).Where(&model.Policy{Name: name}).Delete(&model.Policy{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPolicyNotFound
	}
	return nil
}

func (s *PolicyStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Policy{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func targetColumn(provider model.Provider) string {
	switch provider {
	case model.ProviderAzure:
		return "azure_target"
	case model.ProviderGCP:
		return "gcp_target"
	default:
		return "aws_target"
	}
}
