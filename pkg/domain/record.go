package domain

import "time"

// Record is the durable row emitted when a session completes.
type Record struct {
	ID           string
	Phone        string
	State        State
	FirstName    string
	LastName     string
	HonoreeName  string
	Relationship string
	TShirtSize   string
	ImageURL     string
	LastUpdate   time.Time
}

// NewRecord builds the record for a completed session.
func NewRecord(id, phone string, s *Session) Record {
	return Record{
		ID:           id,
		Phone:        phone,
		State:        s.State,
		FirstName:    s.FirstName,
		LastName:     s.LastName,
		HonoreeName:  s.HonoreeName,
		Relationship: s.Relationship,
		TShirtSize:   s.TShirtSize,
		ImageURL:     s.ImageURL,
		LastUpdate:   s.LastUpdate,
	}
}

// Columns returns the column names of a record row, in order.
func Columns() []string {
	return []string{
		"id",
		"state",
		"image_url",
		"first_name",
		"last_name",
		"honoree_name",
		"relationship",
		"tshirt_size",
		"last_update",
		"phone",
	}
}

// Values returns the row values aligned with Columns.
// last_update is expressed as fractional Unix seconds.
func (r Record) Values() []any {
	return []any{
		r.ID,
		string(r.State),
		r.ImageURL,
		r.FirstName,
		r.LastName,
		r.HonoreeName,
		r.Relationship,
		r.TShirtSize,
		epochSeconds(r.LastUpdate),
		r.Phone,
	}
}

// Map returns the record as a flat column -> value mapping.
func (r Record) Map() map[string]any {
	cols := Columns()
	vals := r.Values()
	out := make(map[string]any, len(cols))
	for i, c := range cols {
		out[c] = vals[i]
	}
	return out
}

func epochSeconds(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.Unix()) + float64(t.Nanosecond())/float64(time.Second)
}
