package youtube

import (
	"errors"
	"fmt"
)

// ErrPlaylistNotFound возвращается, когда у канала нет плейлиста загрузок.
var ErrPlaylistNotFound = errors.New("uploads playlist not found")

// UpstreamHTTPError описывает не-2xx ответ API. Повторных попыток нет.
type UpstreamHTTPError struct {
	Endpoint string
	Status   int
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("YouTube %s API returned HTTP %d", e.Endpoint, e.Status)
}
