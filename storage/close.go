package storage

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"Reformly/pkg/logger"
	"Reformly/storage/database"
	"Reformly/storage/mq"
	"Reformly/storage/redis"
)

type closer struct {
	name  string
	close func(ctx context.Context) error
}

// 先停止收发消息，再断开缓存，最后关闭数据库，保证消费中的写库能完成
var closers = []closer{
	{"rabbitmq", mq.Close},
	{"redis", redis.Close},
	{"postgres", database.Close},
}

// Close 按顺序关闭所有存储连接，单个失败不影响后续关闭
func Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Logger.Info("Closing storage connections...")

	var errs []error
	for _, c := range closers {
		if err := c.close(ctx); err != nil {
			logger.Logger.Error("Failed to close storage", zap.String("component", c.name), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		logger.Logger.Info("Storage closed", zap.String("component", c.name))
	}

	return errors.Join(errs...)
}
