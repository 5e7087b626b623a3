package command

import (
	"context"
	"encoding/json"
	"time"

	"keyhub/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const maintenanceTimeout = 2 * time.Minute

// MaintenanceHandler 維運指令：修復 owner index、清除 owner、重新載入設定
type MaintenanceHandler struct {
	logger *zap.Logger
	owners *service.OwnerService
	policy *service.ConfigProvider
}

func NewMaintenanceHandler(
	logger *zap.Logger,
	owners *service.OwnerService,
	policy *service.ConfigProvider,
) *MaintenanceHandler {
	return &MaintenanceHandler{
		logger: logger,
		owners: owners,
		policy: policy,
	}
}

func (handler *MaintenanceHandler) RepairIndex(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), maintenanceTimeout)
	defer cancel()

	report, err := handler.owners.RepairIndex(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd, report)
}

func (handler *MaintenanceHandler) Purge(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), maintenanceTimeout)
	defer cancel()

	report, err := handler.owners.Purge(ctx, args[0], "cli")
	if err != nil {
		return err
	}
	handler.logger.Info("owner purged from cli",
		zap.String("ownerId", report.OwnerID),
		zap.Int("free", report.FreeKeysRemoved),
		zap.Int("paid", report.PaidKeysRemoved),
		zap.Int("executions", report.ExecutionsRemoved),
	)
	return printJSON(cmd, report)
}

// RefreshConfig 讀取失敗時仍會印出生效中的設定並回傳錯誤
func (handler *MaintenanceHandler) RefreshConfig(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), maintenanceTimeout)
	defer cancel()

	policy, err := handler.policy.Refresh(ctx)
	if policy != nil {
		if printErr := printJSON(cmd, policy); printErr != nil {
			return printErr
		}
	}
	return err
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(out))
	return nil
}
