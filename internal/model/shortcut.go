package model

// Shortcut is a key and the destination URL it resolves to.
type Shortcut struct {
	Key string
	URL string
}

// ShortcutRecord is one line of the file journal.
type ShortcutRecord struct {
	UUID        string `json:"uuid"`
	ShortURL    string `json:"short_url"`
	OriginalURL string `json:"original_url"`
}

// Stats is the external representation of store statistics.
type Stats struct {
	Shortcuts int `json:"shortcuts"`
}
