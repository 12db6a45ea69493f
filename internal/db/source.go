package db

import (
	"fmt"

	"github.com/patrickwarner/adinsights/internal/config"
	"github.com/patrickwarner/adinsights/internal/dataset"
)

// OpenSource returns the dataset source selected by DATA_SOURCE together with
// a function releasing its connections.
func OpenSource(cfg config.Config) (dataset.Source, func(), error) {
	switch cfg.DataSource {
	case config.SourceCSV, "":
		return dataset.CSVSource{Path: cfg.DataCSVPath}, func() {}, nil
	case config.SourceClickHouse:
		ch, err := InitClickHouse(cfg.ClickHouseDSN, cfg.CHMaxOpenConns)
		if err != nil {
			return nil, nil, err
		}
		return ch, ch.Close, nil
	case config.SourcePostgres:
		pg, err := InitPostgres(cfg.PostgresDSN, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime, cfg.DBConnMaxIdleTime)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown DATA_SOURCE %q", cfg.DataSource)
	}
}
