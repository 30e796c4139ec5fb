package http

import (
	"context"
	"errors"
	"time"

	"drawing-server/internal/api/http/websocket"
	"drawing-server/internal/state"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/sessions"
	"go.uber.org/zap"
)

// NewApp 注册所有路由，RunServer 和测试共用
func NewApp(appState *state.AppState) *iris.Application {
	app := iris.Default()

	sess := sessions.New(sessions.Config{
		Cookie:  appState.Cfg.Session.Cookie,
		Expires: appState.Cfg.Session.Expires,
	})
	app.Use(sess.Handler())

	api := app.Party("/api", websocket.IdentifyClient)

	api.Post("/createRoom", CreateRoom(appState))
	api.Get("/getRooms", GetRooms(appState))
	api.Get("/joinRoom", JoinRoom(appState))
	api.Get("/rooms/{name}", GetRoom(appState))

	app.Get("/ws/draw", websocket.DrawGame(appState))

	return app
}

func RunServer(appState *state.AppState) error {
	app := NewApp(appState)

	iris.RegisterOnInterrupt(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		zap.L().Info("收到退出信号，关闭服务器")

		app.Shutdown(ctx)
		appState.Close()
	})

	addr := appState.Cfg.Addr()
	zap.S().Infof("服务器监听 %s", addr)

	err := app.Listen(addr, iris.WithoutInterruptHandler)
	if errors.Is(err, iris.ErrServerClosed) {
		return nil
	}

	return err
}
