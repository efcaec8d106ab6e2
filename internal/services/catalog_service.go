package services

import (
	"errors"
	"fmt"

	"quickclean/internal/domain"
	"quickclean/internal/repos"
)

type CatalogService struct {
	Stores   *repos.StoreRepo
	Prods    *repos.ProductRepo
	Services *repos.ServiceRepo

	// Partner is the only store whose products a Buy Pack may reference.
	Partner string
	// Known lists the store names a Buy Pack may be delivered from.
	Known []string
}

func NewCatalogService(stores *repos.StoreRepo, prods *repos.ProductRepo, svcs *repos.ServiceRepo, partner string, known []string) *CatalogService {
	return &CatalogService{Stores: stores, Prods: prods, Services: svcs, Partner: partner, Known: known}
}

func (s *CatalogService) IsPartner(store string) bool { return store != "" && store == s.Partner }

func (s *CatalogService) IsKnownStore(store string) bool {
	if s.IsPartner(store) {
		return true
	}
	for _, k := range s.Known {
		if k == store {
			return true
		}
	}
	return false
}

// CheckBuyPack enforces the Help Me Buy Pack store rules. It returns the
// referenced product when there is one; a listed non-partner store without a
// product yields (nil, nil).
func (s *CatalogService) CheckBuyPack(store, productID string) (*domain.Product, error) {
	if store == "" {
		return nil, domain.Invalid("store", "Store required for "+domain.ServiceBuyPack)
	}
	if !s.IsPartner(store) {
		if productID == "" && s.IsKnownStore(store) {
			return nil, nil
		}
		return nil, domain.Invalid("store", fmt.Sprintf("Only %s is supported for %s", s.Partner, domain.ServiceBuyPack))
	}
	if productID == "" {
		return nil, domain.Invalid("productId", "productId required for "+domain.ServiceBuyPack)
	}
	return s.PartnerProduct(productID)
}

// PartnerProduct loads productID and checks that its owning store is the
// partner store.
func (s *CatalogService) PartnerProduct(productID string) (*domain.Product, error) {
	p, err := s.Prods.Get(productID)
	if domain.IsNotFound(err) {
		return nil, domain.Invalid("productId", "Product not found")
	}
	if err != nil {
		return nil, err
	}
	owner, err := s.Stores.Get(p.StoreID)
	if err != nil && !domain.IsNotFound(err) {
		return nil, err
	}
	if owner == nil || !s.IsPartner(owner.Name) {
		return nil, domain.Invalid("productId", "Product does not belong to the partnered store")
	}
	return p, nil
}

func (s *CatalogService) ListStores() ([]domain.Store, error) { return s.Stores.List() }

// StoreDetail returns the store with its products, newest first.
func (s *CatalogService) StoreDetail(storeID string) (*domain.Store, []domain.Product, error) {
	st, err := s.Stores.Get(storeID)
	if err != nil {
		return nil, nil, err
	}
	prods, err := s.Prods.ListByStore(storeID)
	if err != nil {
		return nil, nil, err
	}
	return st, prods, nil
}

func (s *CatalogService) ListProducts(storeID string) ([]domain.Product, error) {
	return s.Prods.ListByStore(storeID)
}

type ProductInput struct {
	Name        string
	Price       float64
	IsAvailable *bool
	Image       string
	Description string
}

func (s *CatalogService) AddProduct(storeID string, in ProductInput) (*domain.Product, error) {
	st, err := s.Stores.Get(storeID)
	if err != nil {
		return nil, err
	}
	p := &domain.Product{
		StoreID:     st.ID,
		Name:        in.Name,
		Price:       in.Price,
		IsAvailable: in.IsAvailable == nil || *in.IsAvailable,
		Image:       in.Image,
		Description: in.Description,
	}
	if err := s.Prods.Create(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) UpdateProduct(id string, patch repos.ProductPatch) (*domain.Product, error) {
	return s.Prods.Update(id, patch)
}

func (s *CatalogService) ListServices() ([]domain.Service, error) { return s.Services.List() }

func (s *CatalogService) CreateService(svc *domain.Service) error {
	err := s.Services.Create(svc)
	if errors.Is(err, domain.ErrConflict) {
		return fmt.Errorf("service %q: %w", svc.Name, err)
	}
	return err
}

func (s *CatalogService) UpdateService(id string, patch repos.ServicePatch) (*domain.Service, error) {
	return s.Services.Update(id, patch)
}
