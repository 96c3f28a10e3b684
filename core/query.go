package core

// MediaRef references a media attachment supplied with a query. The payload
// itself lives with the caller; only the reference travels through the
// pipeline.
type MediaRef struct {
	URI      string  `json:"uri"`                 // External retrieval URI
	MimeType *string `json:"mime_type,omitempty"` // Optional MIME type
	Name     *string `json:"name,omitempty"`      // Original filename hint
}

// Query is the immutable unit of work entering the pipeline. It is created
// once per request and never mutated afterwards; derived data (detected mode,
// refined retrieval scope) lives elsewhere.
type Query struct {
	ID             string     `json:"id"`
	Text           string     `json:"text"`
	UserID         string     `json:"user_id"`
	ConversationID string     `json:"conversation_id"`
	Media          []MediaRef `json:"media,omitempty"`
	Locale         string     `json:"locale,omitempty"` // Detected or declared BCP 47 tag
}

// NewQuery constructs a Query with a fresh unique identifier.
func NewQuery(text, userID, conversationID string) Query {
	return Query{
		ID:             NewID(),
		Text:           text,
		UserID:         userID,
		ConversationID: conversationID,
	}
}

// WithLocale returns a copy of the query carrying the given locale tag.
func (q Query) WithLocale(locale string) Query {
	q.Locale = locale
	return q
}
