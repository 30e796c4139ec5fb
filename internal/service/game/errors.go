package game

import (
	"errors"
	"fmt"
)

var (
	ErrRoomNotFound  = errors.New("房间不存在")
	ErrAlreadyExists = errors.New("房间名已被占用")
	ErrRoomClosed    = errors.New("房间已关闭")

	ErrUsernameTaken     = errors.New("用户名在房间内已被占用")
	ErrRoomFull          = errors.New("房间已满")
	ErrWrongPhase        = errors.New("当前阶段不允许该操作")
	ErrNotDrawer         = errors.New("只有绘画玩家可以选词")
	ErrInvalidWord       = errors.New("所选词语不在候选列表中")
	ErrIllegalTransition = errors.New("非法的阶段转换")

	ErrConnectionClosed = errors.New("连接已关闭")
	ErrSendBufferFull   = errors.New("发送缓冲区已满")
)

// ValidationError 表示请求字段不合法，在进入房间逻辑之前就被拒绝
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
