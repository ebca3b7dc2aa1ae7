package domain

// FrequencyRow is one entry of a token-frequency ranking.
type FrequencyRow struct {
	Keyword string  `json:"keyword"`
	Count   int     `json:"count"`
	Share   float64 `json:"share" validate:"min=0,max=1"`
}
