package youtube

import (
	"sort"

	"ytAgent/internal/model"
)

// Rank упорядочивает каналы для запроса query: точные совпадения нормализованного
// названия идут первыми, внутри групп по убыванию подписчиков. Сортировка
// стабильная, при равенстве сохраняется порядок API.
func Rank(query string, channels []model.Channel) []model.Channel {
	key := model.NormalizeTitle(query)

	ranked := make([]model.Channel, len(channels))
	copy(ranked, channels)

	sort.SliceStable(ranked, func(i, j int) bool {
		iExact := model.NormalizeTitle(ranked[i].Title) == key
		jExact := model.NormalizeTitle(ranked[j].Title) == key
		if iExact != jExact {
			return iExact
		}
		return ranked[i].Subscribers() > ranked[j].Subscribers()
	})

	return ranked
}
