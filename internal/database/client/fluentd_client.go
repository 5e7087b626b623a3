package client

import (
	"context"
	"keyhub/config"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
	"go.uber.org/zap"
)

// Client log shipping 的最小介面，測試與停用時以 NoopClient 代替
type Client interface {
	Post(ctx context.Context, tag string, message any) error
	Close() error
}

// FluentdClient 以 fluent-logger-golang 的 forward 協定送出
type FluentdClient struct {
	client    *fluent.Fluent
	tagPrefix string
}

// NewFluentdClient 建立 forward client；FLUENTD__ENABLED=false 時回傳 NoopClient
func NewFluentdClient(logger *zap.Logger, config *config.Configuration) (Client, func(), error) {
	if !config.Fluentd.Enabled {
		logger.Info("fluentd disabled, log shipping is a no-op")
		return &NoopClient{}, func() {}, nil
	}

	prefix := "keyhub"
	if config.Fluentd.TagPrefix != "" {
		prefix = config.Fluentd.TagPrefix
	}
	var timeout time.Duration
	if config.Fluentd.Timeout > 0 {
		timeout = time.Duration(config.Fluentd.Timeout) * time.Millisecond
	}

	f, err := fluent.New(fluent.Config{
		FluentHost:  config.Fluentd.Host,
		FluentPort:  config.Fluentd.Port,
		Timeout:     timeout,
		TagPrefix:   prefix,
		// 不讓 log shipping 阻塞請求
		Async:       true,
		BufferLimit: config.Fluentd.BufferLimit,
	})
	if err != nil {
		logger.Error("failed to create fluentd client", zap.Error(err))
		return nil, nil, err
	}
	c := &FluentdClient{client: f, tagPrefix: prefix}
	cleanup := func() {
		logger.Info("closing the Fluentd resources")
		if err := c.Close(); err != nil {
			logger.Error("failed to close fluentd client", zap.Error(err))
		}
	}
	return c, cleanup, nil
}

func (c *FluentdClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Post tag 會自動加上 TagPrefix；函式庫不支援 context，已取消的請求直接略過
func (c *FluentdClient) Post(ctx context.Context, tag string, message any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.client.Post(tag, message)
}


type NoopClient struct{}

func (n *NoopClient) Post(ctx context.Context, tag string, message any) error { return nil }
func (n *NoopClient) Close() error                                           { return nil }
