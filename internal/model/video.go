package model

import "strings"

// Task это одна единица автоматизации: страница одного видео.
type Task struct {
	TargetURL string `json:"targetUrl"`
}

// WatchURL строит канонический адрес просмотра для идентификатора видео.
func WatchURL(siteURL, videoID string) string {
	return strings.TrimRight(siteURL, "/") + "/watch?v=" + videoID
}

// TasksFromLinks превращает список ссылок в очередь задач.
func TasksFromLinks(links []string) []Task {
	tasks := make([]Task, 0, len(links))
	for _, l := range links {
		tasks = append(tasks, Task{TargetURL: l})
	}
	return tasks
}
