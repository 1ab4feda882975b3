package cmd

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"portfolioanalysis/api"
	"portfolioanalysis/internal/logger"
	"portfolioanalysis/internal/repository"
	"portfolioanalysis/internal/service"
	"portfolioanalysis/internal/util"
	interestrate "portfolioanalysis/pkg/interest_rate"
	"strings"
)

func CloseDependencies(handler *api.ApiHandler) {
	if handler.Db == nil {
		return
	}
	err := handler.Db.Close()
	if err != nil {
		log.Fatalf("failed to close db: %v", err)
	}
}

func InitializeDependencies(config *util.Config) (*api.ApiHandler, error) {
	httpClient := &http.Client{
		Timeout: config.Provider.RequestTimeout(),
	}

	var priceHistoryRepository repository.PriceHistoryRepository
	switch {
	case strings.EqualFold(os.Getenv("PORTFOLIO_ENV"), "test") || UseOfflinePrices:
		priceHistoryRepository = NewOfflinePriceRepositoryForTests()
	case config.Provider.DataServiceURL != "":
		priceHistoryRepository = repository.NewDataServiceRepository(httpClient, config.Provider.DataServiceURL)
	default:
		priceHistoryRepository = repository.NewYahooPriceRepository(repository.YahooPriceRepositoryOptions{
			Attempts: config.Provider.RetryAttempts,
			Backoff:  config.Provider.RetryBackoff(),
		})
	}

	var (
		dbConn             *sql.DB
		adjPriceRepository repository.AdjustedPriceRepository
	)
	if config.Storage.SqlitePath != "" {
		var err error
		dbConn, err = repository.NewSqliteDb(config.Storage.SqlitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open price cache: %w", err)
		}
		adjPriceRepository = repository.NewAdjustedPriceRepository(dbConn)
	}

	var interestRateRepository repository.InterestRateRepository
	if config.Analysis.UseTreasuryRate {
		interestRateRepository = repository.NewInterestRateRepository(interestrate.Client{
			HttpClient: httpClient,
			BaseURL:    config.Provider.TreasuryURL,
		})
	}

	priceService := service.NewPriceService(priceHistoryRepository, adjPriceRepository)
	analysisService := service.NewAnalysisService(priceService, interestRateRepository, config.Analysis)

	apiHandler := &api.ApiHandler{
		Db:              dbConn,
		PriceService:    priceService,
		AnalysisService: analysisService,
		Config:          *config,
		Logger:          logger.New(),
	}

	return apiHandler, nil
}
