package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/andy/pharmabill/internal/config"
	"github.com/andy/pharmabill/internal/crypto"
	"github.com/andy/pharmabill/internal/db"
	"github.com/andy/pharmabill/internal/logger"
	"github.com/andy/pharmabill/internal/repository"
	"github.com/andy/pharmabill/internal/service"
)

// App is the dependency injection container for all application components
type App struct {
	Config *config.Config
	DB     *db.DB
	Store  *repository.Store

	// Repositories
	ProductRepo  repository.ProductRepository
	ClientRepo   repository.ClientRepository
	ProformaRepo repository.ProformaRepository
	InvoiceRepo  repository.InvoiceRepository
	SettingsRepo repository.SettingsRepository
	CompanyRepo  repository.CompanyRepository

	// Services
	DocumentService service.DocumentService
	PaymentService  service.PaymentService
	CatalogService  service.CatalogService
	SettingsService service.SettingsService
	ReportService   service.ReportService
}

// New creates a new App instance, initializing all dependencies:
// encryption key, database, migrations, store seeding, repositories and services.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	password, created, err := crypto.ObtainKey(crypto.NewKeyring(), promptForPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain encryption key: %w", err)
	}
	if created {
		fmt.Println("✓ Database encryption configured successfully")
		fmt.Println()
	}

	database, err := db.Open(cfg.Database.Path, password)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.RunMigrations(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	a, err := NewWithKV(ctx, cfg, repository.NewSQLiteKV(database))
	if err != nil {
		database.Close()
		return nil, err
	}
	a.DB = database
	return a, nil
}

// NewWithKV wires the store, repositories and services over any KV.
// Tests use it with a MemoryKV.
func NewWithKV(ctx context.Context, cfg *config.Config, kv repository.KV) (*App, error) {
	store := repository.NewStore(kv)
	seeded, err := store.Initialize(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	if seeded {
		log := logger.WithComponent("app")
		log.Info().Msg("factory defaults installed")
	}

	productRepo := repository.NewProductRepo(store)
	clientRepo := repository.NewClientRepo(store)
	proformaRepo := repository.NewProformaRepo(store)
	invoiceRepo := repository.NewInvoiceRepo(store)
	settingsRepo := repository.NewSettingsRepo(store)
	companyRepo := repository.NewCompanyRepo(store)

	numbering := service.Numbering{
		ProformaPrefix: cfg.Documents.ProformaPrefix,
		InvoicePrefix:  cfg.Documents.InvoicePrefix,
	}

	return &App{
		Config:       cfg,
		Store:        store,
		ProductRepo:  productRepo,
		ClientRepo:   clientRepo,
		ProformaRepo: proformaRepo,
		InvoiceRepo:  invoiceRepo,
		SettingsRepo: settingsRepo,
		CompanyRepo:  companyRepo,
		DocumentService: service.NewDocumentService(
			store, productRepo, clientRepo, proformaRepo, invoiceRepo, settingsRepo, numbering,
		),
		PaymentService:  service.NewPaymentService(invoiceRepo),
		CatalogService:  service.NewCatalogService(productRepo, clientRepo),
		SettingsService: service.NewSettingsService(store, settingsRepo, companyRepo),
		ReportService:   service.NewReportService(invoiceRepo, proformaRepo),
	}, nil
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// promptForPassword asks for a new database password on first run
func promptForPassword() (string, error) {
	fmt.Println("Setting up database encryption for the first time...")
	fmt.Println()
	fmt.Println("Your billing data will be encrypted with a password.")
	fmt.Println("This password will be stored securely in your system keyring.")
	fmt.Println()
	fmt.Print("Enter a password for database encryption: ")

	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if len(password) == 0 {
		return "", fmt.Errorf("password cannot be empty")
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}

	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}

	return string(password), nil
}

// WriteBackup exports every collection to a file. An empty path means the
// configured export directory; a directory receives the dated backup name.
func (a *App) WriteBackup(ctx context.Context, path string) (string, error) {
	data, name, err := a.SettingsService.Export(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to export: %w", err)
	}

	if path == "" {
		path = filepath.Join(a.Config.Documents.ExportDir, name)
	} else if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, name)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return path, nil
}

// SaveConfig saves the current configuration to disk
func (a *App) SaveConfig() error {
	return a.Config.Save(config.DefaultConfigPath())
}
