package handlers

import (
	"github.com/jmoiron/sqlx"

	"quickclean/internal/assets"
	"quickclean/internal/config"
	"quickclean/internal/realtime"
	"quickclean/internal/repos"
	"quickclean/internal/services"
)

type Deps struct {
	Auth *services.AuthService
	Hub  *realtime.Hub

	BookingHandler      *BookingHandler
	AdminBookingHandler *BookingHandler
	AdminHandler        *AdminHandler
	AuthHandler         *AuthHandler
	StoreHandler        *StoreHandler
	ProductHandler      *ProductHandler
	ServiceHandler      *ServiceHandler
	LodgeHandler        *LodgeHandler
	UploadHandler       *UploadHandler

	InternalSecret string
}

// NewDeps wires repos, services and handlers. Booking events go to hub and
// to every extra notifier.
func NewDeps(db *sqlx.DB, cfg config.Config, hub *realtime.Hub, store *assets.S3Store, extra ...services.Notifier) *Deps {
	customerRepo := repos.NewCustomerRepo(db)
	storeRepo := repos.NewStoreRepo(db)
	prodRepo := repos.NewProductRepo(db)
	serviceRepo := repos.NewServiceRepo(db)
	bookingRepo := repos.NewBookingRepo(db)
	adminRepo := repos.NewAdminRepo(db)
	statsRepo := repos.NewStatsRepo(db)
	lodgeRepo := repos.NewLodgeRepo(db)

	var notify services.Notifiers
	if hub != nil {
		notify = append(notify, hub)
	}
	notify = append(notify, extra...)

	catalogSvc := services.NewCatalogService(storeRepo, prodRepo, serviceRepo, cfg.PartnerStore, cfg.KnownStores)
	statsSvc := services.NewStatsService(statsRepo, storeRepo, prodRepo)
	bookingSvc := services.NewBookingService(bookingRepo, customerRepo, prodRepo, services.NewComposer(catalogSvc), notify)
	bookingSvc.Stats = statsSvc
	authSvc := services.NewAuthService(adminRepo, cfg.JWTSecret, cfg.JWTTTL)

	if store == nil {
		store = &assets.S3Store{}
	}

	return &Deps{
		Auth:                authSvc,
		Hub:                 hub,
		BookingHandler:      &BookingHandler{Bookings: bookingSvc, Scope: services.PublicScope},
		AdminBookingHandler: &BookingHandler{Bookings: bookingSvc, Scope: services.AdminScope},
		AdminHandler:        &AdminHandler{Bookings: bookingSvc},
		AuthHandler:         &AuthHandler{Auth: authSvc, Production: cfg.Production()},
		StoreHandler:        &StoreHandler{Catalog: catalogSvc, Stats: statsSvc},
		ProductHandler:      &ProductHandler{Catalog: catalogSvc, Stats: statsSvc},
		ServiceHandler:      &ServiceHandler{Catalog: catalogSvc},
		LodgeHandler:        &LodgeHandler{Lodges: lodgeRepo},
		UploadHandler:       &UploadHandler{Store: store},
		InternalSecret:      cfg.InternalSecret,
	}
}
