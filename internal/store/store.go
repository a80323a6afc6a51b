package store

import "gorm.io/gorm"

type Store interface {
	Close() error
	Policy() Policy
	Invocation() Invocation
}

type DataStore struct {
	db         *gorm.DB
	policy     Policy
	invocation Invocation
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		db:         db,
		policy:     NewPolicy(db),
		invocation: NewInvocation(db),
	}
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *DataStore) Policy() Policy {
	return s.policy
}

func (s *DataStore) Invocation() Invocation {
	return s.invocation
}
