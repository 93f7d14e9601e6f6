package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/bazaarpanel/bazaar/logger"
	"github.com/bazaarpanel/bazaar/web/locale"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

type LoginStatus byte

const (
	LoginSuccess LoginStatus = 1
	LoginFail    LoginStatus = 0
)

var (
	bot       *telego.Bot
	adminIds  []int64
	isRunning bool
)

// Tgbot pushes panel notifications to the configured Telegram chats.
type Tgbot struct {
	settingService SettingService
}

func (t *Tgbot) NewTgbot() *Tgbot {
	return new(Tgbot)
}

func (t *Tgbot) I18nBot(name string, params ...string) string {
	return locale.I18n(locale.Bot, name, params...)
}

func (t *Tgbot) Start() error {
	enabled, err := t.settingService.GetTgbotEnabled()
	if err != nil || !enabled {
		return err
	}

	tgBotToken, err := t.settingService.GetTgBotToken()
	if err != nil || tgBotToken == "" {
		logger.Warning("Get TgBotToken failed:", err)
		return err
	}

	tgBotId, err := t.settingService.GetTgBotChatId()
	if err != nil {
		logger.Warning("Get TgBotChatId failed:", err)
		return err
	}

	for _, adminId := range strings.Split(tgBotId, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(adminId))
		if err != nil {
			logger.Warning("Failed to parse TgBotChatId:", err)
			return err
		}
		adminIds = append(adminIds, int64(id))
	}

	bot, err = telego.NewBot(tgBotToken)
	if err != nil {
		logger.Warning("Get tgbot's api error:", err)
		return err
	}

	isRunning = true
	logger.Info("Telegram notifier started")
	return nil
}

func (t *Tgbot) IsRunning() bool {
	return isRunning
}

func (t *Tgbot) Stop() {
	if !isRunning {
		return
	}
	logger.Info("Stop Telegram notifier ...")
	isRunning = false
	adminIds = nil
}

func (t *Tgbot) SendMsgToTgbot(chatId int64, msg string) {
	if !isRunning {
		return
	}
	if msg == "" {
		logger.Info("[tgbot] message is empty!")
		return
	}

	params := telego.SendMessageParams{
		ChatID: tu.ID(chatId),
		Text:   msg,
	}
	_, err := bot.SendMessage(&params)
	if err != nil {
		logger.Warning("Error sending telegram message:", err)
	}
}

func (t *Tgbot) SendMsgToTgbotAdmins(msg string) {
	for _, adminId := range adminIds {
		t.SendMsgToTgbot(adminId, msg)
	}
}

// UserLoginNotify reports a panel login attempt to the admin chats when
// login notifications are enabled.
func (t *Tgbot) UserLoginNotify(email string, ip string, status LoginStatus) {
	if !t.IsRunning() {
		return
	}
	loginNotify, err := t.settingService.GetTgBotLoginNotify()
	if err != nil || !loginNotify {
		return
	}
	if email == "" || ip == "" {
		logger.Warning("UserLoginNotify failed, invalid info!")
		return
	}

	now := time.Now().Format("2006-01-02 15:04:05")
	var msg string
	if status == LoginSuccess {
		msg = t.I18nBot("tgbot.loginSuccess", "Email=="+email, "IP=="+ip, "Time=="+now)
	} else {
		msg = t.I18nBot("tgbot.loginFailed", "Email=="+email, "IP=="+ip, "Time=="+now)
	}
	t.SendMsgToTgbotAdmins(msg)
}

// KycReportNotify publishes the outcome of a reconciliation run.
func (t *Tgbot) KycReportNotify(result ReconcileResult) {
	if !t.IsRunning() {
		return
	}
	msg := t.I18nBot("tgbot.kycReport",
		"Scanned=="+strconv.Itoa(result.Scanned),
		"Deleted=="+strconv.Itoa(result.Deleted))
	t.SendMsgToTgbotAdmins(msg)
}
