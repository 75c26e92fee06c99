package analyzer

import "bytes"

// strictCommas is how many commas the legacy six-column layout needs.
const strictCommas = 5

// extractor pulls the pickup zone and pickup hour out of one record.
type extractor struct {
	hourBuckets int
	strict      bool
}

// extract returns the trimmed pickup zone and the pickup hour of line. The
// zone is always the second field. The datetime field depends on how many
// commas the line has:
//
//	a,zone,datetime                -> third field, to end of line
//	a,zone,b,datetime              -> fourth field, to end of line
//	a,zone,b,datetime,c[,...]      -> fourth field, up to the fourth comma
//
// In strict mode only lines with at least six fields are accepted and the
// datetime is always the fourth field. The returned zone aliases line.
func (e extractor) extract(line []byte) (zone []byte, hour int, ok bool) {
	var commas [strictCommas]int
	n := 0
	want := 4
	if e.strict {
		want = strictCommas
	}
	for i := 0; i < len(line) && n < want; i++ {
		if line[i] == ',' {
			commas[n] = i
			n++
		}
	}
	if n < 2 {
		return nil, 0, false
	}
	if e.strict && n < strictCommas {
		return nil, 0, false
	}

	zone = trimSpace(line[commas[0]+1 : commas[1]])
	if len(zone) == 0 {
		return nil, 0, false
	}

	var datetime []byte
	switch {
	case n == 2:
		datetime = line[commas[1]+1:]
	case n == 3:
		datetime = line[commas[2]+1:]
	default:
		datetime = line[commas[2]+1 : commas[3]]
	}
	datetime = trimSpace(datetime)
	if len(datetime) == 0 {
		return nil, 0, false
	}

	hour, ok = parseHour(datetime, e.hourBuckets)
	if !ok {
		return nil, 0, false
	}
	return zone, hour, true
}

// parseHour reads the two-digit hour that follows the first space of a
// datetime such as "2023-01-01 08:15:00". Extra spaces between date and time
// are allowed.
func parseHour(datetime []byte, hourBuckets int) (int, bool) {
	p := bytes.IndexByte(datetime, ' ')
	if p < 0 {
		return 0, false
	}
	for p < len(datetime) && datetime[p] == ' ' {
		p++
	}
	if p+1 >= len(datetime) {
		return 0, false
	}
	d0, d1 := datetime[p], datetime[p+1]
	if !isDigit(d0) || !isDigit(d1) {
		return 0, false
	}
	hour := int(d0-'0')*10 + int(d1-'0')
	if hour >= hourBuckets {
		return 0, false
	}
	return hour, true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// trimSpace strips leading and trailing bytes <= 0x20. Unlike
// bytes.TrimSpace it treats every control byte as whitespace and never
// decodes UTF-8.
func trimSpace(b []byte) []byte {
	start, end := 0, len(b)
	for start < end && b[start] <= ' ' {
		start++
	}
	for end > start && b[end-1] <= ' ' {
		end--
	}
	return b[start:end]
}
