package ui

import (
	"fmt"
)

const (
	MsgWelcomeNew       = "Привет! Давай создадим твой профиль. Сначала укажи свой пол:"
	MsgWelcomeBack      = "Привет! Твой профиль уже заполнен. Что хочешь сделать?"
	MsgAskGender        = "Укажи свой пол:"
	MsgAskName          = "Отлично! Теперь укажи свое имя:"
	MsgAskAge           = "Сколько тебе лет?"
	MsgAskCourse        = "Укажите свой курс"
	MsgAskBio           = "Расскажи немного о себе (интересы, хобби и т.д.):"
	MsgAskPhoto         = "Теперь отправь свою лучшую фотографию:"
	MsgPhotoRequired    = "Пожалуйста, отправь фотографию."
	MsgAgeFormat        = "Пожалуйста, укажите возраст цифрами."
	MsgEmptyText        = "Ответ не может быть пустым."
	MsgConfirmIntro     = "Вот твой профиль:"
	MsgConfirmChoose    = "Пожалуйста, выбери 'Да, все верно' или 'Изменить'."
	MsgProfileCreated   = "Твой профиль успешно создан! Теперь ты можешь начать поиск."
	MsgNoUsername       = "У тебя не задан username в Telegram. Без него совпадения не смогут с тобой связаться: укажи его в настройках Telegram и нажми /start."
	MsgChooseAction     = "Пожалуйста, выберите действие:"
	MsgBackToMenu       = "Возвращаемся в меню."
	MsgSettings         = "Настройки:"
	MsgEditWhat         = "Что вы хотите изменить?"
	MsgChangesSaved     = "Изменения сохранены."
	MsgProfileNotFilled = "Ваш профиль еще не заполнен."
	MsgYourProfile      = "Твой профиль:"
	MsgNoProfiles       = "Пока что больше нет анкет. Попробуйте позже!"
	MsgLikeSent         = "Лайк отправлен! Продолжаем поиск..."
	MsgLikeBackSent     = "Лайк отправлен!"
	MsgSkipped          = "Анкета пропущена. Продолжаем поиск..."
	MsgRejected         = "Анкета отклонена."
	MsgItsAMatch        = "УРА! Это совпадение! 🎉"
	MsgYouWereLiked     = "Тебя лайкнули! Вот чья анкета:"
	MsgStaleCandidate   = "Что-то пошло не так. Попробуйте снова начать поиск."
	MsgProfileGone      = "Эта анкета больше недоступна."
	MsgGoodbye          = "До свидания! Надеюсь, мы еще пообщаемся."
	MsgGenericFailure   = "Произошла ошибка при обработке вашего ответа. Попробуйте еще раз."
	MsgUnknownCommand   = "Неизвестная команда. Используйте /start"
	MsgPressStart       = "Нажмите /start, чтобы начать."
	MsgPhotoUnavailable = "(Не удалось загрузить фото)"
	MsgPhotoMissing     = "(Фото отсутствует)"
	MsgNoInfo           = "Нет информации"

	MsgEditGender = "Укажите новый пол:"
	MsgEditName   = "Укажите новое имя:"
	MsgEditAge    = "Укажите новый возраст:"
	MsgEditCourse = "Укажите новый курс:"
	MsgEditBio    = "Напишите новое описание о себе:"
	MsgEditPhoto  = "Отправьте новую фотографию:"

	MsgGenderUpdated = "Пол обновлен."
	MsgNameUpdated   = "Имя обновлено."
	MsgAgeUpdated    = "Возраст обновлен."
	MsgCourseUpdated = "Курс обновлен."
	MsgBioUpdated    = "Описание обновлено."
	MsgPhotoUpdated  = "Фотография обновлена."

	MsgBannedDefault      = "Ваш аккаунт заблокирован."
	MsgMaintenanceDefault = "Бот временно недоступен: идут технические работы. Попробуйте позже."
	MsgUnbannedNotice     = "Ваш аккаунт разблокирован. Нажмите /start, чтобы продолжить."

	MsgAdminPanel          = "Админ-панель:"
	MsgBanManagement       = "Управление банами:"
	MsgAskBanTarget        = "Отправьте ID пользователя и причину через пробел, например: 123456 спам"
	MsgAskUnbanTarget      = "Отправьте ID пользователя для разбана:"
	MsgAskMaintenanceText  = "Отправьте текст сообщения о техработах. Чтобы указать время окончания, добавьте его через |, например: Обновляем бота | 2026-01-02 15:04"
	MsgBadUserID           = "ID пользователя должен быть числом."
	MsgBadMaintenanceInput = "Не удалось разобрать время окончания. Формат: ГГГГ-ММ-ДД ЧЧ:ММ"
	MsgCannotBanAdmin      = "Нельзя заблокировать администратора."
	MsgNotBanned           = "Пользователь не заблокирован."
	MsgNoBans              = "Заблокированных пользователей нет."
	MsgMaintenanceSaved    = "Сообщение о техработах сохранено."
)

func AgeRangeMessage(minAge, maxAge int) string {
	return fmt.Sprintf("Пожалуйста, укажите реальный возраст (%d-%d):", minAge, maxAge)
}

func TextTooLongMessage(limit int) string {
	return fmt.Sprintf("Слишком длинный ответ: не больше %d символов.", limit)
}

func BannedMessage(userID int64, reason string) string {
	return fmt.Sprintf("Пользователь %d заблокирован. Причина: %s", userID, orDash(reason))
}

func UnbannedMessage(userID int64) string {
	return fmt.Sprintf("Пользователь %d разблокирован.", userID)
}

func MaintenanceToggledMessage(on bool) string {
	if on {
		return "Режим техработ включен."
	}
	return "Режим техработ выключен."
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
