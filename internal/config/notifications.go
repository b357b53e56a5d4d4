package config

import (
	"fmt"
	"time"
)

// Notifications configures the order-event consumer. The consumer needs the
// broker URL and a drain window on shutdown, nothing else.
type Notifications struct {
	RabbitMQURL     string
	ShutdownTimeout time.Duration
}

func LoadNotifications() (Notifications, error) {
	url := getEnv("RABBITMQ_URL", "")
	if url == "" {
		return Notifications{}, fmt.Errorf("RABBITMQ_URL is required")
	}

	return Notifications{
		RabbitMQURL:     url,
		ShutdownTimeout: defaultShutdownTimeout,
	}, nil
}
