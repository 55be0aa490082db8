package ui

import (
	"fmt"

	"github.com/oggyb/matchbot/internal/chat"
)

// Button labels. Handlers compare incoming text against these.
const (
	BtnMale    = "Мужской"
	BtnFemale  = "Женский"
	BtnOther   = "Другое"
	BtnConfirm = "Да, все верно"
	BtnEdit    = "Изменить"

	BtnSearch   = "Поиск"
	BtnSettings = "Настройки"
	BtnAdmin    = "Админ-панель"

	BtnLike    = "❤️ Лайк"
	BtnDislike = "❌ Дизлайк"
	BtnMenu    = "⬅️ Меню"

	BtnEditProfile = "Редактировать профиль"
	BtnMyProfile   = "Мой профиль"

	BtnGender = "Пол"
	BtnName   = "Имя"
	BtnAge    = "Возраст"
	BtnCourse = "Курс"
	BtnBio    = "О себе"
	BtnPhoto  = "Фото"
	BtnDone   = "Готово"

	BtnStats              = "Статистика"
	BtnMaintenance        = "Техработы"
	BtnMaintenanceMessage = "Сообщение техработ"
	BtnBans               = "Баны"
	BtnBan                = "Забанить"
	BtnUnban              = "Разбанить"
	BtnBanList            = "Список банов"
	BtnBack               = "Назад"

	BtnLikeBack    = "❤️ Лайкнуть в ответ"
	BtnDeclineBack = "❌ Отклонить"
	BtnNextPage    = "Далее ➡️"
)

// Callback data prefixes; the suffix is a user id or a pagination cursor.
const (
	CallbackLike    = "like_"
	CallbackDislike = "dislike_"
	CallbackUnban   = "unban_"
	CallbackBans    = "bans_"
)

func reply(rows ...[]string) *chat.Keyboard {
	return &chat.Keyboard{Reply: rows}
}

func RemoveKeyboard() *chat.Keyboard { return &chat.Keyboard{Remove: true} }

func GenderKeyboard() *chat.Keyboard {
	return reply([]string{BtnMale, BtnFemale, BtnOther})
}

func ConfirmKeyboard() *chat.Keyboard {
	return reply([]string{BtnConfirm, BtnEdit})
}

func MainMenuKeyboard(isAdmin bool) *chat.Keyboard {
	kb := reply([]string{BtnSearch, BtnSettings})
	if isAdmin {
		kb.Reply = append(kb.Reply, []string{BtnAdmin})
	}
	return kb
}

func BrowseKeyboard() *chat.Keyboard {
	return reply([]string{BtnLike, BtnDislike}, []string{BtnMenu})
}

func SettingsKeyboard() *chat.Keyboard {
	return reply([]string{BtnEditProfile, BtnMyProfile}, []string{BtnMenu})
}

func EditKeyboard() *chat.Keyboard {
	return reply(
		[]string{BtnGender, BtnName, BtnAge},
		[]string{BtnCourse, BtnBio, BtnPhoto},
		[]string{BtnDone},
	)
}

func AdminKeyboard() *chat.Keyboard {
	return reply(
		[]string{BtnStats, BtnMaintenance},
		[]string{BtnMaintenanceMessage, BtnBans},
		[]string{BtnMenu},
	)
}

func BanManagementKeyboard() *chat.Keyboard {
	return reply([]string{BtnBan, BtnUnban}, []string{BtnBanList}, []string{BtnBack})
}

func BackKeyboard() *chat.Keyboard {
	return reply([]string{BtnBack})
}

// LikeNoticeKeyboard offers the liked user the two answers to a like.
func LikeNoticeKeyboard(likerID int64) *chat.Keyboard {
	return &chat.Keyboard{Inline: [][]chat.InlineButton{{
		{Text: BtnLikeBack, Data: fmt.Sprintf("%s%d", CallbackLike, likerID)},
		{Text: BtnDeclineBack, Data: fmt.Sprintf("%s%d", CallbackDislike, likerID)},
	}}}
}
