// Package model содержит общие записи, которыми обмениваются контексты агента.
package model

import (
	"regexp"
	"strconv"
	"strings"
)

var nonDigits = regexp.MustCompile(`\D`)

// Channel описывает найденный канал. После создания не изменяется.
type Channel struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	IconURL         string `json:"iconUrl"`
	SubscriberCount string `json:"subscriberCount"` // сырое значение из API, может содержать разделители
	Handle          string `json:"handle"`          // без ведущего @, может быть пустым
}

// Subscribers возвращает число подписчиков, извлеченное из сырой строки.
// Строка без цифр дает 0.
func (c Channel) Subscribers() int64 {
	digits := nonDigits.ReplaceAllString(c.SubscriberCount, "")
	if digits == "" {
		return 0
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// VideosURL возвращает адрес страницы с видео канала на сайте siteURL.
func (c Channel) VideosURL(siteURL string) string {
	siteURL = strings.TrimRight(siteURL, "/")
	if c.Handle != "" {
		return siteURL + "/@" + c.Handle + "/videos"
	}
	return siteURL + "/channel/" + c.ID + "/videos"
}

// NormalizeTitle убирает пробельные символы и приводит строку к нижнему регистру.
func NormalizeTitle(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}
