package wikitext

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"20060102150405",
	"January 2, 2006",
	"January 2 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"January 2006",
	"Jan 2006",
	"2006-01",
	"2006",
	"15:04",
	"15:04:05",
}

var relativeDateRE = regexp.MustCompile(`(?i)^([+-]?\d+)\s*(second|minute|hour|day|week|fortnight|month|year)s?(\s+ago)?$`)

// ParseDate reads the date forms accepted by {{#time:}} and the date
// templates. Empty input and "now" mean ref.
func ParseDate(s string, ref time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "now":
		return ref, true
	case "today":
		return time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location()), true
	case "tomorrow":
		return time.Date(ref.Year(), ref.Month(), ref.Day()+1, 0, 0, 0, 0, ref.Location()), true
	case "yesterday":
		return time.Date(ref.Year(), ref.Month(), ref.Day()-1, 0, 0, 0, 0, ref.Location()), true
	}
	if strings.HasPrefix(s, "@") {
		if secs, err := strconv.ParseInt(s[1:], 10, 64); err == nil {
			return time.Unix(secs, 0).UTC(), true
		}
	}
	if m := relativeDateRE.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		if m[3] != "" {
			n = -n
		}
		switch strings.ToLower(m[2]) {
		case "second":
			return ref.Add(time.Duration(n) * time.Second), true
		case "minute":
			return ref.Add(time.Duration(n) * time.Minute), true
		case "hour":
			return ref.Add(time.Duration(n) * time.Hour), true
		case "day":
			return ref.AddDate(0, 0, n), true
		case "week":
			return ref.AddDate(0, 0, 7*n), true
		case "fortnight":
			return ref.AddDate(0, 0, 14*n), true
		case "month":
			return ref.AddDate(0, n, 0), true
		case "year":
			return ref.AddDate(n, 0, 0), true
		}
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if layout == "15:04" || layout == "15:04:05" {
			return time.Date(ref.Year(), ref.Month(), ref.Day(), t.Hour(), t.Minute(), t.Second(), 0, ref.Location()), true
		}
		return t, true
	}
	return time.Time{}, false
}

// FormatTime renders t with the PHP-style format codes used by {{#time:}}.
// Text in double quotes and backslash-escaped characters are literal;
// characters that are not codes pass through.
func FormatTime(format string, t time.Time) string {
	var sb strings.Builder
	rs := []rune(format)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch r {
		case '\\':
			if i+1 < len(rs) {
				i++
				sb.WriteRune(rs[i])
			} else {
				sb.WriteRune(r)
			}
		case '"':
			end := -1
			for j := i + 1; j < len(rs); j++ {
				if rs[j] == '"' {
					end = j
					break
				}
			}
			if end < 0 {
				sb.WriteRune(r)
				continue
			}
			sb.WriteString(string(rs[i+1 : end]))
			i = end
		case 'Y':
			sb.WriteString(strconv.Itoa(t.Year()))
		case 'y':
			sb.WriteString(pad2(t.Year() % 100))
		case 'o':
			year, _ := t.ISOWeek()
			sb.WriteString(strconv.Itoa(year))
		case 'L':
			sb.WriteString(boolDigit(isLeap(t.Year())))
		case 'F':
			sb.WriteString(t.Month().String())
		case 'M':
			sb.WriteString(t.Month().String()[:3])
		case 'm':
			sb.WriteString(pad2(int(t.Month())))
		case 'n':
			sb.WriteString(strconv.Itoa(int(t.Month())))
		case 't':
			sb.WriteString(strconv.Itoa(daysIn(t.Year(), t.Month())))
		case 'j':
			sb.WriteString(strconv.Itoa(t.Day()))
		case 'd':
			sb.WriteString(pad2(t.Day()))
		case 'S':
			sb.WriteString(OrdinalSuffix(t.Day()))
		case 'z':
			sb.WriteString(strconv.Itoa(t.YearDay() - 1))
		case 'l':
			sb.WriteString(t.Weekday().String())
		case 'D':
			sb.WriteString(t.Weekday().String()[:3])
		case 'N':
			wd := int(t.Weekday())
			if wd == 0 {
				wd = 7
			}
			sb.WriteString(strconv.Itoa(wd))
		case 'w':
			sb.WriteString(strconv.Itoa(int(t.Weekday())))
		case 'W':
			_, week := t.ISOWeek()
			sb.WriteString(pad2(week))
		case 'a':
			sb.WriteString(strings.ToLower(t.Format("PM")))
		case 'A':
			sb.WriteString(t.Format("PM"))
		case 'g':
			sb.WriteString(t.Format("3"))
		case 'h':
			sb.WriteString(t.Format("03"))
		case 'G':
			sb.WriteString(strconv.Itoa(t.Hour()))
		case 'H':
			sb.WriteString(pad2(t.Hour()))
		case 'i':
			sb.WriteString(pad2(t.Minute()))
		case 's':
			sb.WriteString(pad2(t.Second()))
		case 'U':
			sb.WriteString(strconv.FormatInt(t.Unix(), 10))
		case 'T':
			sb.WriteString(t.Format("MST"))
		case 'e':
			sb.WriteString(t.Location().String())
		case 'c':
			sb.WriteString(t.Format(time.RFC3339))
		case 'r':
			sb.WriteString(t.Format(time.RFC1123Z))
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// OrdinalSuffix returns the English ordinal suffix for n ("st", "nd", ...).
func OrdinalSuffix(n int) string {
	return strings.TrimPrefix(humanize.Ordinal(n), strconv.Itoa(n))
}

func pad2(n int) string {
	if n < 10 && n >= 0 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func boolDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func isLeap(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
