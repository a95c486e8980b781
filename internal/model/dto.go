package model

// MatchDTO 是返回给前端的一条匹配结果。
type MatchDTO struct {
	ID          uint    `json:"id"`
	CandidateID uint    `json:"candidateId"`
	Name        string  `json:"name"`
	Headline    string  `json:"headline"`
	Category    string  `json:"category"`
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
	Swipe       string  `json:"swipe,omitempty"`
}

// SearchResultDTO 是一次搜索的返回结果。Message 仅在没有匹配时出现。
type SearchResultDTO struct {
	RequestID uint       `json:"requestId"`
	Status    string     `json:"status"`
	Matches   []MatchDTO `json:"matches"`
	Message   string     `json:"message,omitempty"`
}

// HistoryItemDTO 是搜索历史中的一条记录。
type HistoryItemDTO struct {
	RequestID  uint      `json:"requestId"`
	Prompt     string    `json:"prompt"`
	Status     string    `json:"status"`
	MatchCount int64     `json:"matchCount"`
	CreatedAt  LocalTime `json:"createdAt"`
}

// MatchDetailDTO 是单个搜索请求及其全部匹配。
type MatchDetailDTO struct {
	RequestID uint       `json:"requestId"`
	Prompt    string     `json:"prompt"`
	Status    string     `json:"status"`
	Keywords  []string   `json:"keywords"`
	Skills    []string   `json:"skills"`
	CreatedAt LocalTime  `json:"createdAt"`
	Matches   []MatchDTO `json:"matches"`
}

// SwipeResultDTO 是滑动操作的返回结果，右滑建立会话时带上会话 ID。
type SwipeResultDTO struct {
	MatchID        uint   `json:"matchId"`
	Direction      string `json:"direction"`
	ConversationID *uint  `json:"conversationId,omitempty"`
}
