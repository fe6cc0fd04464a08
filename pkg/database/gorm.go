package database

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Pool bounds the sql connection pool behind GORM. Zero values fall back to
// defaults sized for a single API instance.
type Pool struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

func (p Pool) withDefaults() Pool {
	if p.MaxIdleConns == 0 {
		p.MaxIdleConns = 8
	}
	if p.MaxOpenConns == 0 {
		p.MaxOpenConns = 64
	}
	if p.ConnMaxLifetime == 0 {
		p.ConnMaxLifetime = 30 * time.Minute
	}
	return p
}

func sqlLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "studysync-db ", log.LstdFlags),
		logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		},
	)
}

// Connect opens the postgres connection and applies the pool bounds.
func Connect(dsn string, pool Pool) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: sqlLogger(),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	pool = pool.withDefaults()
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)

	return db, nil
}
