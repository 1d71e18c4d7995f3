package memory

import (
	"time"

	"github.com/mmcdole/marquee/internal/domain"
)

// DemoItems returns a small catalog for demo mode, created in the hours
// before now
func DemoItems(now time.Time) []domain.Item {
	views := func(n int64) *int64 { return &n }
	at := func(hoursAgo int) time.Time { return now.Add(-time.Duration(hoursAgo) * time.Hour).UTC() }

	items := []domain.Item{
		{
			Title:       "Nova",
			Description: "Uma equipe de resgate atravessa uma nebulosa em colapso.",
			EmbedURL:    "https://www.youtube.com/embed/aqz-KE-bpKQ",
			Genre:       "Ficção Científica",
			ReleaseYear: 2021,
			Duration:    "2h 05min",
			Rating:      8.4,
			Views:       views(1_250_000),
			Likes:       views(48_200),
		},
		{
			Title:       "Dusk",
			Description: "Depois da nova, uma cidade costeira tenta recomeçar.",
			EmbedURL:    "https://www.youtube.com/embed/eRsGyueVLvQ",
			Genre:       "Drama",
			ReleaseYear: 2019,
			Duration:    "1h 48min",
			Rating:      7.2,
			Views:       views(86_400),
		},
		{
			Title:       "Ação Total",
			Description: "Um ex-piloto aceita uma última corrida pelas ruas de São Paulo.",
			EmbedURL:    "https://www.youtube.com/embed/R6MlUcmOul8",
			Genre:       "Ação",
			ReleaseYear: 2023,
			Duration:    "1h 52min",
			Rating:      6.9,
		},
		{
			Title:       "A Casa do Lago",
			Description: "Uma família herda uma casa que não quer ser esquecida.",
			EmbedURL:    "https://www.youtube.com/embed/TLkA0RELQ1g",
			Genre:       "Terror",
			ReleaseYear: 2018,
			Duration:    "1h 35min",
			Rating:      7.8,
			Views:       views(312_000),
		},
		{
			Title:       "Oceanos",
			Description: "Dez anos filmando as migrações do Atlântico Sul.",
			EmbedURL:    "https://www.youtube.com/embed/WTNDVyxrr2k",
			Genre:       "Documentário",
			ReleaseYear: 2022,
			Duration:    "1h 30min",
			Rating:      9.1,
			Views:       views(940),
		},
		{
			Title:       "Cantiga",
			Description: "Um coral de bairro se prepara para a final nacional.",
			Genre:       "Musical",
			ReleaseYear: 2020,
			Duration:    "1h 41min",
			Rating:      6.5,
		},
	}
	for i := range items {
		items[i].CreatedAt = at(i + 1)
		items[i].UpdatedAt = items[i].CreatedAt
	}
	return items
}
