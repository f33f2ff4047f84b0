package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusChangedNote(t *testing.T) {
	s, err := NewI18nSupport("zh")
	require.NoError(t, err)

	got := s.TWithDefaultLang(MsgStatusChanged, map[string]interface{}{"Old": "WATCHING", "New": "RESOLVED_OK"})
	assert.Equal(t, `状态从 "WATCHING" 更新为 "RESOLVED_OK"`, got)

	got = s.T("en", MsgStatusChanged, map[string]interface{}{"Old": "OPEN", "New": "ACKED"})
	assert.Equal(t, `Status changed from "OPEN" to "ACKED"`, got)
}

func TestUnknownKeyFallsBackToKey(t *testing.T) {
	s := MustDefault()
	assert.Equal(t, "no.such.key", s.T("en", "no.such.key", nil))
}

func TestUnknownLanguageUsesDefault(t *testing.T) {
	s := MustDefault()
	assert.Equal(t, "事件已创建", s.T("fr", MsgEventCreated, nil))
}
