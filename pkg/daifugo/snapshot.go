package daifugo

// SeatState 广播用的玩家座位信息，不含手牌内容
type SeatState struct {
	UserId    int64 `json:"user_id"`
	HandCount int   `json:"hand_count"`
	Rank      int8  `json:"rank"`
	Finished  bool  `json:"finished"`
}

// TableState 广播给客户端的桌面快照
type TableState struct {
	Status      RoundStatus `json:"status"`
	Rules       Rules       `json:"rules"`
	TurnUserId  int64       `json:"turn_user_id"`
	FieldCards  Cards       `json:"field_cards"`
	LastUserId  int64       `json:"last_user_id,omitempty"` // 0 表示场空
	PassCount   int         `json:"pass_count"`
	Revolution  bool        `json:"revolution"`
	ElevenBack  bool        `json:"eleven_back"`
	Shibari     bool        `json:"shibari"`
	FinishOrder []int64     `json:"finish_order,omitempty"`
	Seats       []SeatState `json:"seats"`
}

// Snapshot 生成当前桌面快照
func (r *Round) Snapshot() TableState {
	state := TableState{
		Status:      r.Status,
		Rules:       r.Rules,
		TurnUserId:  r.TurnUserId(),
		FieldCards:  r.Field.Clone(),
		PassCount:   r.PassCount,
		Revolution:  r.Revolution,
		ElevenBack:  r.ElevenBack,
		Shibari:     r.Shibari,
		FinishOrder: append([]int64(nil), r.FinishOrder...),
		Seats:       make([]SeatState, 0, len(r.Players)),
	}
	if r.LastIndex >= 0 {
		state.LastUserId = r.Players[r.LastIndex].UserId
	}
	for _, p := range r.Players {
		state.Seats = append(state.Seats, SeatState{
			UserId:    p.UserId,
			HandCount: p.HandCount(),
			Rank:      p.Rank,
			Finished:  p.Status == StatusFinished,
		})
	}
	return state
}
