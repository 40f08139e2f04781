// Command dbcheck verifies that the data layer can reach its dependencies.
//
// It loads configuration from the environment, builds the server container,
// runs the configured health checks and prints the report as JSON. The exit
// status is 1 when the report is unhealthy.
//
// With -city (or any other search flag) it also runs a property search
// through the service layer and prints the listings.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/deppfellow/lightbnb/internal/config"
	"github.com/deppfellow/lightbnb/internal/lib/utils"
	"github.com/deppfellow/lightbnb/internal/logger"
	"github.com/deppfellow/lightbnb/internal/models"
	"github.com/deppfellow/lightbnb/internal/repository"
	"github.com/deppfellow/lightbnb/internal/server"
	"github.com/deppfellow/lightbnb/internal/service"
)

const shutdownTimeout = 10 * time.Second

type searchFlags struct {
	city      string
	ownerID   int64
	minPrice  int64
	maxPrice  int64
	minRating float64
	limit     int
}

func main() {
	var sf searchFlags
	flag.StringVar(&sf.city, "city", "", "search properties in this city")
	flag.Int64Var(&sf.ownerID, "owner", 0, "search properties of this owner id")
	flag.Int64Var(&sf.minPrice, "min-price", -1, "minimum cost per night, in cents")
	flag.Int64Var(&sf.maxPrice, "max-price", -1, "maximum cost per night, in cents")
	flag.Float64Var(&sf.minRating, "min-rating", 0, "minimum average rating")
	flag.IntVar(&sf.limit, "limit", 10, "maximum number of listings")
	flag.Parse()

	healthy, err := run(sf)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dbcheck:", err)
		os.Exit(1)
	}
	if !healthy {
		os.Exit(1)
	}
}

func run(sf searchFlags) (bool, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return false, err
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		loggerService.Shutdown()
		return false, err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	ctx := context.Background()

	report := srv.CheckHealth(ctx)
	if err := utils.PrintJSON(os.Stdout, report); err != nil {
		return false, err
	}
	if !report.Healthy() {
		return false, nil
	}

	filter, ok := sf.filter()
	if !ok {
		return true, nil
	}

	repos := repository.NewRepositories(srv.DB.Pool, cfg.Database.QueryTimeout)
	services, err := service.NewService(srv, repos)
	if err != nil {
		return false, err
	}

	listings, err := services.Properties.Search(ctx, filter, sf.limit)
	if err != nil {
		return false, err
	}

	return true, utils.PrintJSON(os.Stdout, listings)
}

// filter converts the flags into a search filter. ok is false when no search
// flag was given.
func (sf searchFlags) filter() (f models.PropertyFilter, ok bool) {
	if sf.city != "" {
		f.City, ok = sf.city, true
	}
	if sf.ownerID > 0 {
		f.OwnerID, ok = &sf.ownerID, true
	}
	if sf.minPrice >= 0 {
		f.MinimumPricePerNight, ok = &sf.minPrice, true
	}
	if sf.maxPrice >= 0 {
		f.MaximumPricePerNight, ok = &sf.maxPrice, true
	}
	if sf.minRating > 0 {
		f.MinimumRating, ok = &sf.minRating, true
	}
	return f, ok
}
