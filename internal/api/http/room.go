package http

import (
	"errors"

	"drawing-server/internal/service"
	"drawing-server/internal/service/dto"
	"drawing-server/internal/service/game"
	"drawing-server/internal/state"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

func CreateRoom(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		var req dto.CreateRoomRequest

		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StatusCode(iris.StatusBadRequest)
			ctx.JSON(dto.BasicApiResponse{
				Successful: false,
				Message:    "Invalid request.",
			})
			return
		}

		if err := appState.RoomSvc.CreateRoom(req); err != nil {
			zap.L().Info(
				"创建房间失败",
				zap.String("room", req.Name),
				zap.Error(err),
			)

			ctx.JSON(dto.BasicApiResponse{
				Successful: false,
				Message:    service.Message(err),
			})
			return
		}

		ctx.JSON(dto.BasicApiResponse{Successful: true})
	}
}

func GetRooms(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		if !ctx.URLParamExists("searchQuery") {
			ctx.StatusCode(iris.StatusBadRequest)
			return
		}

		ctx.JSON(appState.RoomSvc.ListRooms(ctx.URLParam("searchQuery")))
	}
}

func GetRoom(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		room, err := appState.RoomSvc.GetRoom(ctx.Params().Get("name"))
		if err != nil {
			ctx.StatusCode(iris.StatusNotFound)
			ctx.JSON(dto.BasicApiResponse{
				Successful: false,
				Message:    service.Message(err),
			})
			return
		}

		ctx.JSON(room)
	}
}

func JoinRoom(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		var req dto.JoinRoomRequest

		if err := ctx.ReadQuery(&req); err != nil {
			ctx.StatusCode(iris.StatusBadRequest)
			return
		}

		if err := appState.RoomSvc.CheckJoin(req); err != nil {
			var verr *game.ValidationError
			if errors.As(err, &verr) {
				ctx.StatusCode(iris.StatusBadRequest)
			}

			ctx.JSON(dto.BasicApiResponse{
				Successful: false,
				Message:    service.Message(err),
			})
			return
		}

		ctx.JSON(dto.BasicApiResponse{Successful: true})
	}
}
