package dto

type CreateRoomRequest struct {
	Name       string `json:"name"`
	MaxPlayers int    `json:"maxPlayers"`
}

// 列表接口中的房间摘要
type RoomResponse struct {
	Name        string `json:"name"`
	MaxPlayers  int    `json:"maxPlayers"`
	PlayerCount int    `json:"playerCount"`
}

type RoomDetailResponse struct {
	RoomResponse
	Phase   string   `json:"phase"`
	Players []Player `json:"players"`
}

// 加入房间前的检查，真正的加入发生在 WS 握手中
type JoinRoomRequest struct {
	Username string `url:"username"`
	RoomName string `url:"roomName"`
}

type BasicApiResponse struct {
	Successful bool   `json:"successful"`
	Message    string `json:"message,omitempty"`
}
