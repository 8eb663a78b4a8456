package schedule

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// Encode serializes the schedule to its stored text form: a JSON object
// keyed by day token, days in Monday..Sunday order, empty days omitted,
// periods in insertion order. The output is deterministic so repeated
// saves of the same schedule produce identical text.
func Encode(ws *WeeklySchedule) []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for d := Monday; d <= Sunday; d++ {
		periods := ws.Periods(d)
		if len(periods) == 0 {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		fmt.Fprintf(&buf, "%q:", d.Token())
		// Marshaling a slice of plain string pairs cannot fail.
		data, _ := json.Marshal(periods)
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// Decode parses stored schedule text back into a WeeklySchedule.
// Text that does not match the day -> period-list structure fails with
// ErrScheduleFormat. Unrecognized day keys are ignored; they can never
// be matched during lookup.
func Decode(data []byte) (*WeeklySchedule, error) {
	var raw map[string][]Period
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScheduleFormat, err)
	}

	ws := &WeeklySchedule{}
	for token, periods := range raw {
		day, ok := ParseDayToken(token)
		if !ok {
			continue
		}
		if len(periods) == 0 {
			continue
		}
		ws.SetPeriods(day, periods)
	}
	return ws, nil
}
