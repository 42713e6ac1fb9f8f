// internal/app/app.go
package app

import (
	"fmt"
	"path/filepath"

	"github.com/slavodej/screenwright/internal/config"
	"github.com/slavodej/screenwright/internal/di"
	"github.com/slavodej/screenwright/internal/llm"
	"github.com/slavodej/screenwright/internal/services"
	"github.com/slavodej/screenwright/internal/storage"
	"github.com/slavodej/screenwright/internal/utils"

	// Provider registration via init.
	_ "github.com/slavodej/screenwright/internal/llm/providers/anthropic"
	_ "github.com/slavodej/screenwright/internal/llm/providers/google"
)

// InitServices builds every service in dependency order and registers
// each in the DI container. Must run after config.InitConfig.
func InitServices() error {
	cfg := config.GetCurrentConfig()
	container := di.GetContainer()

	fileStorage, err := storage.NewFileStorage(filepath.Join(cfg.DataDir, "files"))
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	container.Register("storage", fileStorage)

	documentService := services.NewDocumentService()
	container.Register("documents", documentService)

	provider, model := buildProvider(cfg)
	rewriteService := services.NewRewriteService(provider, model)
	container.Register("rewrite", rewriteService)

	exportService := services.NewExportService(fileStorage)
	container.Register("export", exportService)

	utils.GetLogger().Info("services initialized", map[string]interface{}{
		"services": container.GetNames(),
		"provider": cfg.LLMProvider,
	})

	return nil
}

// buildProvider creates the configured rewrite provider. A missing or
// unconfigurable provider is not fatal: the editor works without it and
// rewrite requests report the service as unreachable.
func buildProvider(cfg *config.AppConfig) (llm.Provider, string) {
	if cfg.LLMProvider == "" || cfg.LLMConfig["api_key"] == "" {
		utils.GetLogger().Warn("no rewrite provider configured", nil)
		return nil, ""
	}

	provider, err := llm.GetProvider(cfg.LLMProvider, cfg.LLMConfig)
	if err != nil {
		utils.GetLogger().Error("failed to initialize rewrite provider", map[string]interface{}{
			"provider": cfg.LLMProvider,
			"err":      err.Error(),
		})
		return nil, ""
	}

	return provider, cfg.LLMConfig["default_model"]
}
