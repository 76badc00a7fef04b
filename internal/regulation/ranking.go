package regulation

import "strings"

// RankingPolicy reorders records for presentation. Implementations must be
// stable and must not drop or add records.
type RankingPolicy interface {
	Name() string
	Rank(records []Record) []Record
}

// PriorityTypePolicy moves records tagged with ICAO to the front.
type PriorityTypePolicy struct {
	ICAO string
}

func (p PriorityTypePolicy) Name() string { return "priority:" + p.ICAO }

func (p PriorityTypePolicy) Rank(records []Record) []Record {
	return Prioritize(records, func(r Record) bool { return r.AppliesTo(p.ICAO) })
}

// Excluded reports whether an exclude_prioritization value names this policy's type.
func (p PriorityTypePolicy) Excluded(exclude string) bool {
	return p.ICAO != "" && strings.Contains(exclude, p.ICAO)
}

// NoopPolicy keeps the input order.
type NoopPolicy struct{}

func (NoopPolicy) Name() string { return "none" }

func (NoopPolicy) Rank(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	return out
}

// PolicyFor returns a PriorityTypePolicy for icao, or NoopPolicy when icao is empty.
func PolicyFor(icao string) RankingPolicy {
	if icao == "" {
		return NoopPolicy{}
	}
	return PriorityTypePolicy{ICAO: icao}
}

// PriorityICAO returns the type a policy prioritizes, or "".
func PriorityICAO(p RankingPolicy) string {
	if pt, ok := p.(PriorityTypePolicy); ok {
		return pt.ICAO
	}
	return ""
}

// Prioritize returns items matching first, then the rest, each group in input order.
func Prioritize[T any](items []T, match func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if match(it) {
			out = append(out, it)
		}
	}
	for _, it := range items {
		if !match(it) {
			out = append(out, it)
		}
	}
	return out
}

// IsPriorityAircraft reports whether a free-text aircraft name denotes a
// Gulfstream 550.
func IsPriorityAircraft(aircraft string) bool {
	lower := strings.ToLower(aircraft)
	return strings.Contains(lower, "gulfstream") && strings.Contains(lower, "550")
}

// TagFallback selects up to n records without semantic search. For a
// priority aircraft it takes records tagged with icao and tops them up with
// general records; otherwise it takes the first n general records.
func TagFallback(records []Record, priority bool, icao string, n int) []Record {
	var out []Record
	if priority && icao != "" {
		for _, r := range records {
			if r.AppliesTo(icao) {
				out = append(out, r)
			}
		}
	}
	for _, r := range records {
		if len(out) >= n {
			break
		}
		if r.General() {
			out = append(out, r)
		}
	}
	return out
}

// Query filters a regulation listing.
type Query struct {
	Category              string
	Search                string
	AircraftType          string
	ExcludePrioritization string
}

// Filter applies q to records. An aircraft type lists exact tag matches and
// then general records; otherwise the policy orders the result unless the
// query excludes its type. Search is a case-insensitive substring match on
// title or content.
func Filter(records []Record, q Query, policy RankingPolicy) []Record {
	var list []Record
	for _, r := range records {
		if q.Category != "" && r.Category != q.Category {
			continue
		}
		list = append(list, r)
	}

	switch {
	case q.AircraftType != "":
		var exact, general []Record
		for _, r := range list {
			if r.AppliesTo(q.AircraftType) {
				exact = append(exact, r)
			} else if r.General() {
				general = append(general, r)
			}
		}
		list = append(exact, general...)
	case policy != nil:
		if pt, ok := policy.(PriorityTypePolicy); !ok || !pt.Excluded(q.ExcludePrioritization) {
			list = policy.Rank(list)
		}
	}

	if s := strings.ToLower(strings.TrimSpace(q.Search)); s != "" {
		var matched []Record
		for _, r := range list {
			if strings.Contains(strings.ToLower(r.Title), s) || strings.Contains(strings.ToLower(r.Content), s) {
				matched = append(matched, r)
			}
		}
		list = matched
	}

	if list == nil {
		list = []Record{}
	}
	return list
}
