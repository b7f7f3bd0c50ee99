package storage

import (
	"Reformly/config"
	"Reformly/storage/database"
	"Reformly/storage/mq"
	"Reformly/storage/redis"
)

// Init 统一初始化存储层，关闭事件总线时跳过 RabbitMQ
func Init() error {
	if err := database.Init(); err != nil {
		return err
	}

	if err := redis.Init(); err != nil {
		return err
	}

	if config.Cfg.EventsEnabled {
		if err := mq.Init(); err != nil {
			return err
		}
	}

	return nil
}
