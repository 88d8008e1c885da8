package model

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Repair lists the fields Decode had to back-fill or correct.
type Repair struct {
	Filled []string
}

// Changed reports whether anything was repaired.
func (r Repair) Changed() bool { return len(r.Filled) > 0 }

func (r *Repair) note(field string) {
	r.Filled = append(r.Filled, field)
}

// Encode serializes p for the state store.
func Encode(p Portfolio) ([]byte, error) {
	return json.Marshal(p)
}

// Decode parses a stored record. Each top-level field is read on its own;
// a missing or unreadable field is replaced with its Seed value and noted in
// the returned Repair. Keys written by the browser-extension version of the
// tracker are accepted as aliases. Only input that is not a JSON object at
// all is an error.
func Decode(data []byte, dayStart time.Time) (Portfolio, Repair, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Portfolio{}, Repair{}, fmt.Errorf("decode state: %w", err)
	}
	if raw == nil {
		return Portfolio{}, Repair{}, fmt.Errorf("decode state: record is null")
	}

	seed := Seed(dayStart)
	var rep Repair
	p := Portfolio{}

	if !readField(raw, &p.Goal, "goal", "goalAmount") {
		p.Goal = seed.Goal
		rep.note("goal")
	}
	if !readField(raw, &p.InflationPct, "inflation_pct", "inflationRate") {
		p.InflationPct = seed.InflationPct
		rep.note("inflation_pct")
	}
	if !readField(raw, &p.MonthlyContribution, "monthly_contribution", "monthlySavings") {
		p.MonthlyContribution = seed.MonthlyContribution
		rep.note("monthly_contribution")
	}
	if !readField(raw, &p.Watermark, "last_milestone", "lastNotificationPercentage") {
		rep.note("last_milestone")
	}
	if w := normalizeWatermark(p.Watermark); w != p.Watermark {
		p.Watermark = w
		rep.note("last_milestone")
	}

	if ds, ok := readTime(raw, "day_start", "startOfDay"); ok {
		p.DayStart = ds
	} else {
		p.DayStart = seed.DayStart
		rep.note("day_start")
	}

	accounts, ok := readAccounts(raw, &rep)
	if ok {
		p.Accounts = accounts
	} else {
		p.Accounts = seed.Accounts
		rep.note("accounts")
	}
	p.RecomputePrincipal()

	p.Consent = readConsent(raw)

	return p, rep, nil
}

func lookup(raw map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok && string(v) != "null" {
			return v, true
		}
	}
	return nil, false
}

func readField(raw map[string]json.RawMessage, dst any, keys ...string) bool {
	v, ok := lookup(raw, keys...)
	if !ok {
		return false
	}
	return json.Unmarshal(v, dst) == nil
}

// readTime accepts RFC 3339 strings and millisecond epoch numbers.
func readTime(raw map[string]json.RawMessage, keys ...string) (time.Time, bool) {
	v, ok := lookup(raw, keys...)
	if !ok {
		return time.Time{}, false
	}
	var t time.Time
	if err := json.Unmarshal(v, &t); err == nil {
		return t, true
	}
	var ms float64
	if err := json.Unmarshal(v, &ms); err == nil && ms > 0 {
		return time.UnixMilli(int64(ms)), true
	}
	return time.Time{}, false
}

func readAccounts(raw map[string]json.RawMessage, rep *Repair) ([]Account, bool) {
	v, ok := lookup(raw, "accounts", "investments")
	if !ok {
		return nil, false
	}
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		return nil, false
	}

	out := make([]Account, 0, len(items))
	for i, item := range items {
		field := func(name string) string { return fmt.Sprintf("accounts[%d].%s", i, name) }

		a := Account{}
		var id string
		if !readField(item, &id, "id") {
			a.ID = uuid.New()
			rep.note(field("id"))
		} else if parsed, err := uuid.Parse(id); err == nil {
			a.ID = parsed
		} else {
			a.ID = uuid.New()
			rep.note(field("id"))
		}
		if !readField(item, &a.Principal, "principal", "initialAmount") {
			rep.note(field("principal"))
		}
		if !readField(item, &a.RatePct, "rate_pct", "rate") {
			rep.note(field("rate_pct"))
		}
		if !readField(item, &a.Balance, "balance", "currentAmount") || a.Balance < 0 {
			a.Balance = a.Principal
			rep.note(field("balance"))
		}
		out = append(out, a)
	}
	return out, true
}

func readConsent(raw map[string]json.RawMessage) Consent {
	var c Consent
	if v, ok := lookup(raw, "consent"); ok {
		if err := json.Unmarshal(v, &c); err == nil {
			return c
		}
	}
	// Flat layout used by the extension.
	_ = readField(raw, &c.Given, "termsAccepted")
	if at, ok := readTime(raw, "termsAcceptedDate"); ok {
		c.At = &at
	}
	var fp string
	if readField(raw, &fp, "termsHash") {
		c.Fingerprint = &fp
	}
	return c
}

// normalizeWatermark snaps a stored watermark onto a band boundary in [0, 100].
func normalizeWatermark(w float64) float64 {
	if math.IsNaN(w) || w < 0 {
		return 0
	}
	if w > 100 {
		return 100
	}
	return math.Floor(w/5) * 5
}

// SortedRepairs returns the repaired fields in a stable order for display.
func (r Repair) SortedRepairs() []string {
	out := append([]string(nil), r.Filled...)
	sort.Strings(out)
	return out
}
