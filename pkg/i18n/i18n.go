package i18n

import (
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// 消息 ID
const (
	MsgEventCreated           = "note.event_created"
	MsgStatusChanged          = "note.status_changed"
	MsgPoliceReported         = "note.police_reported"
	MsgPoliceReportedNumbered = "note.police_reported_numbered"
	MsgPushNewEventBody       = "push.new_event.body"
	MsgPushUpdateResolved     = "push.update.resolved"
	MsgPushUpdateFalseAlarm   = "push.update.false_alarm"
	MsgPushUpdatePolice       = "push.update.police_reported"
	MsgPushUpdateNewNote      = "push.update.new_note"
	MsgPushUpdateNewMedia     = "push.update.new_media"
	MsgPushUpdateGeneric      = "push.update.generic"
)

var zhMessages = []*i18n.Message{
	{ID: MsgEventCreated, Other: "事件已创建"},
	{ID: MsgStatusChanged, Other: `状态从 "{{.Old}}" 更新为 "{{.New}}"`},
	{ID: MsgPoliceReported, Other: "已标记为已报警"},
	{ID: MsgPoliceReportedNumbered, Other: "已报警 (报案号: {{.Number}})"},
	{ID: MsgPushNewEventBody, Other: "有新的安全事件"},
	{ID: MsgPushUpdateResolved, Other: "✅ 事件已解决"},
	{ID: MsgPushUpdateFalseAlarm, Other: "ℹ️ 误报"},
	{ID: MsgPushUpdatePolice, Other: "🚔 已报警"},
	{ID: MsgPushUpdateNewNote, Other: "💬 新评论"},
	{ID: MsgPushUpdateNewMedia, Other: "📷 新证据"},
	{ID: MsgPushUpdateGeneric, Other: "📢 事件更新"},
}

var enMessages = []*i18n.Message{
	{ID: MsgEventCreated, Other: "Event created"},
	{ID: MsgStatusChanged, Other: `Status changed from "{{.Old}}" to "{{.New}}"`},
	{ID: MsgPoliceReported, Other: "Marked as reported to police"},
	{ID: MsgPoliceReportedNumbered, Other: "Reported to police (report no. {{.Number}})"},
	{ID: MsgPushNewEventBody, Other: "New security event reported"},
	{ID: MsgPushUpdateResolved, Other: "✅ Event Resolved"},
	{ID: MsgPushUpdateFalseAlarm, Other: "ℹ️ False Alarm"},
	{ID: MsgPushUpdatePolice, Other: "🚔 Police Notified"},
	{ID: MsgPushUpdateNewNote, Other: "💬 New Comment"},
	{ID: MsgPushUpdateNewMedia, Other: "📷 New Evidence"},
	{ID: MsgPushUpdateGeneric, Other: "📢 Event Update"},
}

// I18nSupport 国际化支持
type I18nSupport struct {
	bundle      *i18n.Bundle
	defaultLang string
}

// NewI18nSupport builds the zh/en bundle; defaultLang is used when a caller
// passes no language.
func NewI18nSupport(defaultLang string) (*I18nSupport, error) {
	tag, err := language.Parse(defaultLang)
	if err != nil {
		tag = language.Chinese
		defaultLang = "zh"
	}
	bundle := i18n.NewBundle(tag)
	if err := bundle.AddMessages(language.Chinese, zhMessages...); err != nil {
		return nil, err
	}
	if err := bundle.AddMessages(language.English, enMessages...); err != nil {
		return nil, err
	}
	return &I18nSupport{bundle: bundle, defaultLang: defaultLang}, nil
}

// MustDefault 测试和默认装配使用
func MustDefault() *I18nSupport {
	s, err := NewI18nSupport("zh")
	if err != nil {
		panic(err)
	}
	return s
}

// T 获取翻译文本，找不到时返回 key
func (i *I18nSupport) T(languageTag, key string, templateData map[string]interface{}) string {
	if languageTag == "" {
		languageTag = i.defaultLang
	}
	localizer := i18n.NewLocalizer(i.bundle, languageTag, i.defaultLang)
	translation, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: templateData,
	})
	if err != nil {
		zap.L().Warn("translate failed", zap.String("key", key), zap.Error(err))
		return key
	}
	return translation
}

// TWithDefaultLang 使用默认语言获取翻译文本
func (i *I18nSupport) TWithDefaultLang(key string, templateData map[string]interface{}) string {
	return i.T(i.defaultLang, key, templateData)
}
