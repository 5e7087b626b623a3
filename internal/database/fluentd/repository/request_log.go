package repository

import (
	"context"
	"encoding/json"
	"time"

	"keyhub/config"
	"keyhub/internal/core"
	"keyhub/internal/database/client"
	"keyhub/internal/database/fluentd/model"

	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(NewLogRepository)

const loggedAtLayout = "2006-01-02 15:04:05.999999 UTC"

// LogRepository 統一負責發送 Request/Response/Execution/KeyEvent Log 到 Fluentd
type LogRepository struct {
	fluentdClient client.Client
	version       string
}

func NewLogRepository(config *config.Configuration, client client.Client) *LogRepository {
	version := "1.0.0"
	if config.App.Version != "" {
		version = config.App.Version
	}
	return &LogRepository{fluentdClient: client, version: version}
}

func (repository *LogRepository) LogRequest(ctx context.Context, req model.RequestLog) error {
	if req.LoggedAt == "" {
		req.LoggedAt = now()
	}
	if req.Version == "" {
		req.Version = repository.version
	}
	return repository.post(ctx, core.FluentdRequest, req)
}

func (repository *LogRepository) LogResponse(ctx context.Context, resp model.ResponseLog) error {
	if resp.LoggedAt == "" {
		resp.LoggedAt = now()
	}
	if resp.Version == "" {
		resp.Version = repository.version
	}
	return repository.post(ctx, core.FluentdResponse, resp)
}

func (repository *LogRepository) LogExecution(ctx context.Context, exec model.ExecutionLog) error {
	if exec.LoggedAt == "" {
		exec.LoggedAt = now()
	}
	if exec.Version == "" {
		exec.Version = repository.version
	}
	return repository.post(ctx, core.FluentdExecution, exec)
}

func (repository *LogRepository) LogKeyEvent(ctx context.Context, event model.KeyEventLog) error {
	if event.LoggedAt == "" {
		event.LoggedAt = now()
	}
	if event.Version == "" {
		event.Version = repository.version
	}
	return repository.post(ctx, core.FluentdKeyEvent, event)
}

// post 轉成 map 再送，fluent 以 msgpack 編碼 map 時會保留 json 欄位名
func (repository *LogRepository) post(ctx context.Context, tag core.FluentdSubTag, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var fluentdMessage map[string]any
	if err := json.Unmarshal(b, &fluentdMessage); err != nil {
		return err
	}
	return repository.fluentdClient.Post(ctx, string(tag), fluentdMessage)
}

func now() string {
	return time.Now().UTC().Format(loggedAtLayout)
}
