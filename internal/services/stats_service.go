package services

import (
	"quickclean/internal/domain"
	"quickclean/internal/repos"
)

type StatsService struct {
	Stats  *repos.StatsRepo
	Stores *repos.StoreRepo
	Prods  *repos.ProductRepo
}

func NewStatsService(stats *repos.StatsRepo, stores *repos.StoreRepo, prods *repos.ProductRepo) *StatsService {
	return &StatsService{Stats: stats, Stores: stores, Prods: prods}
}

// ReactProduct records a like or dislike for an existing product.
func (s *StatsService) ReactProduct(productID, reaction string) (*domain.ProductStats, error) {
	if _, err := s.Prods.Get(productID); err != nil {
		return nil, err
	}
	return s.Stats.ReactProduct(productID, reaction == "like")
}

func (s *StatsService) ReactStore(storeID, reaction string) (*domain.StoreStats, error) {
	if _, err := s.Stores.Get(storeID); err != nil {
		return nil, err
	}
	return s.Stats.ReactStore(storeID, reaction == "like")
}

func (s *StatsService) ProductStats(productID string) (*domain.ProductStats, error) {
	if _, err := s.Prods.Get(productID); err != nil {
		return nil, err
	}
	return s.Stats.ProductStats(productID)
}

func (s *StatsService) StoreStats(storeID string) (*domain.StoreStats, error) {
	if _, err := s.Stores.Get(storeID); err != nil {
		return nil, err
	}
	return s.Stats.StoreStats(storeID)
}

// BookingCompleted credits the booking's store, if it names a catalog store.
// Completing the same booking again, directly or after a detour through
// another status, credits nothing.
func (s *StatsService) BookingCompleted(b domain.Booking) error {
	if b.Store == "" {
		return nil
	}
	st, err := s.Stores.ByName(b.Store)
	if domain.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = s.Stats.CompleteOrder(st.ID, b.ID)
	return err
}
