package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/andy/pharmabill/internal/domain"
	"github.com/andy/pharmabill/internal/logger"
	"github.com/andy/pharmabill/internal/repository"
)

// SettingsService manages preferences, company identity and backups
type SettingsService interface {
	GetSettings(ctx context.Context) (*domain.Settings, error)
	SaveSettings(ctx context.Context, s *domain.Settings) error
	GetCompany(ctx context.Context) (*domain.CompanyInfo, error)
	SaveCompany(ctx context.Context, c *domain.CompanyInfo) error

	// HasUserData reports whether the store holds saved data
	HasUserData(ctx context.Context) (bool, error)
	// Export returns the full backup file contents and its suggested name
	Export(ctx context.Context) (data []byte, filename string, err error)
	// Import replaces every collection with the backup contents
	Import(ctx context.Context, data []byte) error
	// Reset erases every collection
	Reset(ctx context.Context) error
}

type settingsService struct {
	store    *repository.Store
	settings repository.SettingsRepository
	company  repository.CompanyRepository
	now      func() time.Time
	log      zerolog.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(store *repository.Store, settings repository.SettingsRepository, company repository.CompanyRepository) SettingsService {
	return &settingsService{
		store:    store,
		settings: settings,
		company:  company,
		now:      time.Now,
		log:      logger.WithComponent("settings"),
	}
}

func (s *settingsService) GetSettings(ctx context.Context) (*domain.Settings, error) {
	return s.settings.Get(ctx)
}

func (s *settingsService) SaveSettings(ctx context.Context, st *domain.Settings) error {
	s.log.Info().
		Bool("show_unit_column", st.ShowUnitColumn).
		Bool("manual_invoice_numbering", st.ManualInvoiceNumbering).
		Msg("settings saved")
	return s.settings.Save(ctx, st)
}

func (s *settingsService) GetCompany(ctx context.Context) (*domain.CompanyInfo, error) {
	return s.company.Get(ctx)
}

func (s *settingsService) SaveCompany(ctx context.Context, c *domain.CompanyInfo) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	if err := c.Validate(); err != nil {
		return err
	}
	s.log.Info().Str("company", c.Name).Msg("company identity saved")
	return s.company.Save(ctx, c)
}

func (s *settingsService) HasUserData(ctx context.Context) (bool, error) {
	return s.store.HasUserData(ctx)
}

func (s *settingsService) Export(ctx context.Context) ([]byte, string, error) {
	now := s.now()
	data, err := s.store.Export(ctx, now)
	if err != nil {
		return nil, "", err
	}
	return data, repository.BackupFileName(now), nil
}

func (s *settingsService) Import(ctx context.Context, data []byte) error {
	return s.store.Import(ctx, data)
}

func (s *settingsService) Reset(ctx context.Context) error {
	return s.store.Reset(ctx)
}
