package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/MrSnakeDoc/multiverse/internal/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// gormLog routes gorm's query log through the service logger. A missing
// record is a normal Get outcome and is never reported.
type gormLog struct {
	log   logger.Logger
	level gormlogger.LogLevel
}

func newGormLog(log logger.Logger) gormlogger.Interface {
	if log == nil {
		return gormlogger.Discard
	}
	return &gormLog{log: log, level: gormlogger.Warn}
}

func (g *gormLog) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	c := *g
	c.level = level
	return &c
}

func (g *gormLog) Info(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Info {
		g.log.Info(fmt.Sprintf(msg, args...))
	}
}

func (g *gormLog) Warn(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Warn {
		g.log.Warn(fmt.Sprintf(msg, args...))
	}
}

func (g *gormLog) Error(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Error {
		g.log.Error(fmt.Sprintf(msg, args...))
	}
}

func (g *gormLog) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= gormlogger.Error:
		sql, rows := fc()
		g.log.Warn("sqlite query failed",
			logger.String("sql", sql),
			logger.Int("rows", int(rows)),
			logger.Duration("elapsed", elapsed),
			logger.Error(err))
	case elapsed > slowQueryThreshold && g.level >= gormlogger.Warn:
		sql, rows := fc()
		g.log.Warn("slow sqlite query",
			logger.String("sql", sql),
			logger.Int("rows", int(rows)),
			logger.Duration("elapsed", elapsed))
	case g.level >= gormlogger.Info:
		sql, rows := fc()
		g.log.Debug("sqlite query",
			logger.String("sql", sql),
			logger.Int("rows", int(rows)),
			logger.Duration("elapsed", elapsed))
	}
}
