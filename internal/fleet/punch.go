// Package fleet holds the typed, in-memory view of an imported fleet dataset.
// Values here are already normalized: timestamps, costs and coordinates that
// failed to parse are represented as nil, never as zero values.
package fleet

import "time"

// Source values of the point_records "tipo" column.
const (
	TipoEntrada = "ENTRADA"
	TipoSaida   = "SAÍDA"
)

// PunchKind classifies a punch for the pairing algorithm.
type PunchKind int

const (
	PunchOther PunchKind = iota
	PunchEntry
	PunchExit
)

func (k PunchKind) String() string {
	switch k {
	case PunchEntry:
		return "ENTRY"
	case PunchExit:
		return "EXIT"
	default:
		return "OTHER"
	}
}

// KindOf maps a raw "tipo" value to its PunchKind. Matching is exact.
func KindOf(tipo string) PunchKind {
	switch tipo {
	case TipoEntrada:
		return PunchEntry
	case TipoSaida:
		return PunchExit
	default:
		return PunchOther
	}
}

// Location is the optional GPS fix attached to a punch.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PunchRecord is a single clock-in / clock-out event. It is an immutable input:
// nothing downstream of ingestion writes to it.
type PunchRecord struct {
	ID        string     `json:"id"`
	Timestamp *time.Time `json:"timestamp"` // nil when absent or unparseable
	Type      string     `json:"type"`
	User      string     `json:"user"`
	Location  *Location  `json:"location,omitempty"`
}

// Kind classifies the record's raw type.
func (p PunchRecord) Kind() PunchKind { return KindOf(p.Type) }

// HasTimestamp reports whether the record can take part in hour computation.
func (p PunchRecord) HasTimestamp() bool { return p.Timestamp != nil }

// PunchTable is the point_records table of one dataset. A nil *PunchTable means
// the table was never supplied, which is different from an empty one.
type PunchTable struct {
	Records []PunchRecord
}

// Len returns the number of raw records, including the unparseable ones.
func (t *PunchTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}
