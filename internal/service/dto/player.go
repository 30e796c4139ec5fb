package dto

// 房间内玩家的公开信息，分数和名次在每次变化后下发
type Player struct {
	Username  string `json:"username"`
	IsDrawing bool   `json:"isDrawing"`
	Score     int    `json:"score"`
	Rank      int    `json:"rank"`
}
