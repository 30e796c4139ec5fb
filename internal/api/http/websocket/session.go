package websocket

import (
	"drawing-server/internal/service/game"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/sessions"
)

const SESSION_CLIENT_ID = "client_id"

// IdentifyClient 保证会话中有 client_id，优先使用请求参数中的 client_id
func IdentifyClient(ctx iris.Context) {
	session := sessions.Get(ctx)
	if session == nil {
		ctx.Next()
		return
	}

	if id := ctx.URLParam(SESSION_CLIENT_ID); id != "" {
		session.Set(SESSION_CLIENT_ID, id)
	} else if session.GetString(SESSION_CLIENT_ID) == "" {
		session.Set(SESSION_CLIENT_ID, game.GenID())
	}

	ctx.Next()
}

// SessionClientID 返回会话中的 client_id，没有会话时返回空字符串
func SessionClientID(ctx iris.Context) string {
	session := sessions.Get(ctx)
	if session == nil {
		return ""
	}

	return session.GetString(SESSION_CLIENT_ID)
}
