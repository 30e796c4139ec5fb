package main

import (
	"flag"

	"drawing-server/internal/api/http"
	"drawing-server/internal/config"
	"drawing-server/internal/logger"
	"drawing-server/internal/service"
	"drawing-server/internal/service/game"
	"drawing-server/internal/service/words"
	"drawing-server/internal/state"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "app_config.json", "配置文件路径")
	flag.Parse()

	// 加载配置
	cfg := config.InitConfig(*configPath)

	// 初始化日志器
	logger.InitLogger(cfg.LogLevel, cfg.Logging.Format)
	defer zap.L().Sync()

	// 加载词库
	bank, err := words.Load(cfg.Game.WordList)
	if err != nil {
		zap.L().Fatal("加载词库失败", zap.Error(err))
	}

	zap.S().Infof("词库加载完成，共 %d 个词", bank.Len())

	// 组装应用状态
	registry := game.NewRegistry()
	appState := state.NewAppState(
		cfg,
		registry,
		service.NewRoomService(registry, bank, cfg.Game, cfg.Room),
	)

	// 启动服务器
	if err := http.RunServer(appState); err != nil {
		zap.L().Fatal("服务器异常退出", zap.Error(err))
	}
}
