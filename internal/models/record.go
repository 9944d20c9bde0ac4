package models

// PhoneRecord 电话查询记录（Sheet1 一行，追加写入的事件日志）
// 列映射与线上表格一致，业务上只读
type PhoneRecord struct {
	RowNumber       int    `json:"rowNumber"`
	PhoneNumber     string `json:"phoneNumber"`
	Prefix          string `json:"prefix"`
	RiskLevel       string `json:"riskLevel"`
	Headers         string `json:"headers"`
	ReplyToken      string `json:"replyToken"`
	Params          string `json:"params"`
	Query           string `json:"query"`
	Body            string `json:"body"`
	WebhookURL      string `json:"webhookUrl"`
	ExecutionMode   string `json:"executionMode"`
	UserID          string `json:"userId"`
	Timestamp       string `json:"timestamp"`
	IsPigeon        bool   `json:"isPigeon"`
	PigeonPhone     string `json:"pigeonPhone"`
	IsPigeonListed  bool   `json:"isPigeonListed"`
	Type            string `json:"type"`
	Category        string `json:"category"`
	Source          string `json:"source"`
	OverrideBlocked bool   `json:"overrideBlocked"`
	TypeFromSheet   string `json:"typeFromSheet"`
	ReplyBody       string `json:"replyBody"`
	DisplayName     string `json:"displayName"`
	Action          string `json:"action"`
	MemberProfile   string `json:"memberProfile"`
	IsMember        bool   `json:"isMember"`
	Plan            string `json:"plan"`
	Status          string `json:"status"`
	RootReplyToken  string `json:"rootReplyToken"`
	RootUserID      string `json:"rootUserId"`
	HasMemberRow    bool   `json:"hasMemberRow"`
	MemberState     string `json:"memberState"`
	StartAt         string `json:"startAt"`
	ExpireAt        string `json:"expireAt"`
	LineName        string `json:"lineName"`
	ContactPhone    string `json:"contactPhone"`
	PaymentMethod   string `json:"paymentMethod"`
	PaymentTime     string `json:"paymentTime"`
	State           string `json:"state"`
	ProfileURL      string `json:"profileUrl"`
	NeedProfile     bool   `json:"needProfile"`
}

// RiskRecord 风险名单记录（Sheet2 一行）
type RiskRecord struct {
	RowNumber       int    `json:"rowNumber"`
	PhoneNumber     string `json:"phoneNumber"`
	UserID          string `json:"userId"`
	Timestamp       string `json:"timestamp"`
	Prefix          string `json:"prefix"`
	RiskLevel       string `json:"riskLevel"`
	IsPigeon        bool   `json:"isPigeon"`
	PigeonPhone     string `json:"pigeonPhone"`
	Category        string `json:"category"`
	Type            string `json:"type"`
	TypeFromSheet   string `json:"typeFromSheet"`
	DisplayName     string `json:"displayName"`
	MemberProfile   string `json:"memberProfile"`
	HasMemberRow    bool   `json:"hasMemberRow"`
	Plan            string `json:"plan"`
	MemberState     string `json:"memberState"`
	IsMember        bool   `json:"isMember"`
	OverrideBlocked bool   `json:"overrideBlocked"`
	HasUserID       bool   `json:"hasUserId"`
	Status          string `json:"status"`
}

// LineOAMessage LINE 官方账号收到的一条消息（LineOA 工作表一行）
type LineOAMessage struct {
	RowNumber   int    `json:"rowNumber"`
	Timestamp   string `json:"timestamp"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	ProfileURL  string `json:"profileUrl"`
	MessageType string `json:"messageType"`
	MessageText string `json:"messageText"`
}
