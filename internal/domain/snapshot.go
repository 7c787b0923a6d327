package domain

import "sort"

// Snapshot maps channel name to liveness at the end of one polling cycle.
type Snapshot map[string]bool

func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Transitions returns the channels that are live in current but were absent
// or offline in previous, sorted by name. It does not modify its inputs.
func Transitions(previous, current Snapshot) []string {
	var out []string
	for name, live := range current {
		if live && !previous[name] {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Batch picks the statuses for names, in name order. Names without a status
// are skipped.
func Batch(statuses map[string]ChannelStatus, names []string) []ChannelStatus {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	out := make([]ChannelStatus, 0, len(sorted))
	for _, n := range sorted {
		if st, ok := statuses[n]; ok {
			out = append(out, st)
		}
	}
	return out
}
