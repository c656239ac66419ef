package domain

// AuthoritativeEntry is a reference entry from the film catalog index.
// The ingestion core only reads these; they are loaded in bulk per run.
type AuthoritativeEntry struct {
	Code        string   `json:"code"`
	Title       string   `json:"title"`
	OpeningTime int64    `json:"openingTime"`
	Directors   []string `json:"directors"`
	Cast        []string `json:"cast"`
	Companies   []string `json:"companies"`
	Genres      []string `json:"genres"`
	RunningTime int      `json:"runningTime"`
}
