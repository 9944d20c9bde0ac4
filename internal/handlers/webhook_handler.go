package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v7/linebot"
	"go.uber.org/zap"

	"github.com/Gopher0727/LineDesk/internal/models"
	"github.com/Gopher0727/LineDesk/internal/services"
	logger "github.com/Gopher0727/LineDesk/middleware/log"
)

// EventParser 解析并验签 webhook 请求
// 真实现走 LINE SDK 的 channel secret 验签，测试里可替换
type EventParser interface {
	Parse(r *http.Request) ([]*linebot.Event, error)
}

// ProfileProvider 取用户显示名和头像，取不到不阻塞落表
type ProfileProvider interface {
	Profile(ctx context.Context, userID string) (displayName, pictureURL string, err error)
}

// LineEventParser channel secret 验签的 SDK 实现
type LineEventParser struct {
	ChannelSecret string
}

func (p *LineEventParser) Parse(r *http.Request) ([]*linebot.Event, error) {
	return linebot.ParseRequest(p.ChannelSecret, r)
}

// LineProfileProvider Messaging API 的 profile 查询
type LineProfileProvider struct {
	Client *linebot.Client
}

func (p *LineProfileProvider) Profile(ctx context.Context, userID string) (string, string, error) {
	res, err := p.Client.GetProfile(userID).WithContext(ctx).Do()
	if err != nil {
		return "", "", err
	}
	return res.DisplayName, res.PictureURL, nil
}

type WebhookHandler struct {
	Parser        EventParser
	Profiles      ProfileProvider
	RecordService *services.RecordService
	Log           *logger.Logger
}

func NewWebhookHandler(parser EventParser, profiles ProfileProvider, recordService *services.RecordService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		Parser:        parser,
		Profiles:      profiles,
		RecordService: recordService,
		Log:           log,
	}
}

// Handle LINE webhook 入口
// 验签失败回 400；消息事件逐条落 LineOA 表，单条失败只记日志不中断
func (h *WebhookHandler) Handle(c *gin.Context) {
	events, err := h.Parser.Parse(c.Request)
	if err != nil {
		if errors.Is(err, linebot.ErrInvalidSignature) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "签名校验失败"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "请求解析失败"})
		return
	}

	ctx := c.Request.Context()
	for _, event := range events {
		if event.Type != linebot.EventTypeMessage || event.Source == nil || event.Source.UserID == "" {
			continue
		}

		msg := models.LineOAMessage{
			Timestamp: event.Timestamp.Format("2006-01-02 15:04:05"),
			UserID:    event.Source.UserID,
		}
		msg.MessageType, msg.MessageText = describeMessage(event.Message)

		// profile 拿不到就只存 userId
		if h.Profiles != nil {
			profileCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			if name, url, profileErr := h.Profiles.Profile(profileCtx, event.Source.UserID); profileErr == nil {
				msg.DisplayName = name
				msg.ProfileURL = url
			} else {
				h.Log.WarnContext(ctx, "拉取 LINE profile 失败",
					zap.String("user_id", event.Source.UserID),
					zap.Error(profileErr))
			}
			cancel()
		}

		if err := h.RecordService.AppendLineOAMessage(ctx, msg); err != nil {
			h.Log.ErrorContext(ctx, "LineOA 消息落表失败",
				zap.String("user_id", msg.UserID),
				zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// describeMessage 消息类型与文本内容
func describeMessage(message linebot.Message) (string, string) {
	switch m := message.(type) {
	case *linebot.TextMessage:
		return "text", m.Text
	case *linebot.ImageMessage:
		return "image", ""
	case *linebot.VideoMessage:
		return "video", ""
	case *linebot.AudioMessage:
		return "audio", ""
	case *linebot.StickerMessage:
		return "sticker", ""
	case *linebot.LocationMessage:
		return "location", m.Address
	case *linebot.FileMessage:
		return "file", m.FileName
	default:
		return "unknown", ""
	}
}
