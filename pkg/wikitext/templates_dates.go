package wikitext

import (
	"strconv"
	"strings"
	"time"
)

// wikiDate is a possibly partial calendar date; Month and Day are 0 when
// the template did not give them.
type wikiDate struct {
	Year, Month, Day int
}

func registerDateTemplates() {
	registerTemplate(dateTemplate, "birth date", "birth-date", "dob", "death date", "death-date", "start date", "end date", "start-date", "end-date", "film date")
	registerTemplate(birthDateAndAge, "birth date and age", "bda", "start date and age")
	registerTemplate(deathDateAndAge, "death date and age", "dda")
	registerTemplate(birthYearAndAge, "birth year and age", "birth based on age as of date")
	registerTemplate(deathYearAndAge, "death year and age")
	registerTemplate(ageTemplate, "age", "age in years", "ageyears")
	registerTemplate(ageInDays, "age in days")
	registerTemplate(ageInYearsAndDays, "age in years and days", "age in years, days")
	registerTemplate(ageInYearsAndMonths, "age in years and months", "age in years, months")
	registerTemplate(circa, "circa", "c.", "ca", "ca.")
	registerTemplate(floruit, "floruit", "fl.", "fl")
	registerTemplate(reign, "reign", "r.", "ruled")
	registerTemplate(marriage, "marriage", "married")
	registerTemplate(playedYears, "played years")
	registerTemplate(timeAgo, "time ago")
}

func monthNumber(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 12 {
			return n
		}
		return 0
	}
	s = strings.TrimSuffix(s, ".")
	if len(s) < 3 {
		return 0
	}
	for m := time.January; m <= time.December; m++ {
		if strings.HasPrefix(strings.ToLower(m.String()), s) {
			return int(m)
		}
	}
	return 0
}

// dateFromArgs reads year|month|day from args, or a single full date in
// args[0] ("1990-05-15", "15 May 1990").
func dateFromArgs(args []string, ref time.Time) (wikiDate, bool) {
	first := strings.TrimSpace(arg(args, 0))
	if first == "" {
		return wikiDate{}, false
	}
	if y, err := strconv.Atoi(first); err == nil {
		d := wikiDate{Year: y, Month: monthNumber(arg(args, 1))}
		if d.Month > 0 {
			if day, err := strconv.Atoi(strings.TrimSpace(arg(args, 2))); err == nil && day >= 1 && day <= daysIn(y, time.Month(d.Month)) {
				d.Day = day
			}
		}
		return d, true
	}
	t, ok := ParseDate(first, ref)
	if !ok {
		return wikiDate{}, false
	}
	return wikiDate{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, true
}

func dateOf(t time.Time) wikiDate {
	return wikiDate{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// format renders "May 15, 1990", or "15 May 1990" when dmy is set.
func (d wikiDate) format(dmy bool) string {
	year := strconv.Itoa(d.Year)
	if d.Month == 0 {
		return year
	}
	month := time.Month(d.Month).String()
	if d.Day == 0 {
		return month + " " + year
	}
	if dmy {
		return strconv.Itoa(d.Day) + " " + month + " " + year
	}
	return month + " " + strconv.Itoa(d.Day) + ", " + year
}

func (d wikiDate) toTime() time.Time {
	return time.Date(d.Year, time.Month(max(d.Month, 1)), max(d.Day, 1), 0, 0, 0, 0, time.UTC)
}

// yearsBetween counts completed years, so the anniversary must have passed.
func yearsBetween(from, to wikiDate) int {
	years := to.Year - from.Year
	if from.Month == 0 || to.Month == 0 {
		return years
	}
	if to.Month < from.Month || (to.Month == from.Month && from.Day > 0 && to.Day < from.Day) {
		years--
	}
	return years
}

func dayFirst(inv Invocation) bool {
	return inv.Flag("df") || inv.Flag("day first")
}

func plural(n int, unit string) string {
	if n == 1 || n == -1 {
		return strconv.Itoa(n) + " " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}

func dateTemplate(t *Templates, inv Invocation) string {
	d, ok := dateFromArgs(inv.Positional, t.ref)
	if !ok {
		return ""
	}
	return d.format(dayFirst(inv))
}

func birthDateAndAge(t *Templates, inv Invocation) string {
	d, ok := dateFromArgs(inv.Positional, t.ref)
	if !ok {
		return ""
	}
	age := yearsBetween(d, dateOf(t.ref))
	if NormalizeName(inv.Name) == "start date and age" {
		if age < 1 {
			return d.format(dayFirst(inv)) + " (less than a year ago)"
		}
		return d.format(dayFirst(inv)) + " (" + plural(age, "year") + " ago)"
	}
	return d.format(dayFirst(inv)) + " (age " + strconv.Itoa(age) + ")"
}

func deathDateAndAge(t *Templates, inv Invocation) string {
	death, ok := dateFromArgs(inv.Positional, t.ref)
	if !ok {
		return ""
	}
	offset := 3
	if _, err := strconv.Atoi(strings.TrimSpace(arg(inv.Positional, 0))); err != nil {
		offset = 1
	}
	birth, ok := dateFromArgs(inv.Positional[min(offset, len(inv.Positional)):], t.ref)
	if !ok {
		return death.format(dayFirst(inv))
	}
	return death.format(dayFirst(inv)) + " (aged " + strconv.Itoa(yearsBetween(birth, death)) + ")"
}

func ageRange(n int) string {
	return strconv.Itoa(n-1) + "–" + strconv.Itoa(n)
}

func birthYearAndAge(t *Templates, inv Invocation) string {
	year, err := strconv.Atoi(strings.TrimSpace(arg(inv.Positional, 0)))
	if err != nil {
		return ""
	}
	age := t.ref.Year() - year
	month := monthNumber(arg(inv.Positional, 1))
	switch {
	case month == 0 || month == int(t.ref.Month()):
		return strconv.Itoa(year) + " (age " + ageRange(age) + ")"
	case month > int(t.ref.Month()):
		age--
	}
	return strconv.Itoa(year) + " (age " + strconv.Itoa(age) + ")"
}

func deathYearAndAge(t *Templates, inv Invocation) string {
	death, err := strconv.Atoi(strings.TrimSpace(arg(inv.Positional, 0)))
	if err != nil {
		return ""
	}
	birth, err := strconv.Atoi(strings.TrimSpace(arg(inv.Positional, 1)))
	if err != nil {
		return strconv.Itoa(death)
	}
	return strconv.Itoa(death) + " (aged " + ageRange(death-birth) + ")"
}

// agePair reads one or two dates; the second defaults to the reference date.
func agePair(t *Templates, inv Invocation) (wikiDate, wikiDate, bool) {
	args := inv.Positional
	from, ok := dateFromArgs(args, t.ref)
	if !ok {
		return wikiDate{}, wikiDate{}, false
	}
	rest := args[min(3, len(args)):]
	if _, err := strconv.Atoi(strings.TrimSpace(arg(args, 0))); err != nil {
		rest = args[min(1, len(args)):]
	}
	to, ok := dateFromArgs(rest, t.ref)
	if !ok {
		to = dateOf(t.ref)
	}
	return from, to, true
}

func ageTemplate(t *Templates, inv Invocation) string {
	from, to, ok := agePair(t, inv)
	if !ok {
		return ""
	}
	return strconv.Itoa(yearsBetween(from, to))
}

func ageInDays(t *Templates, inv Invocation) string {
	from, to, ok := agePair(t, inv)
	if !ok {
		return ""
	}
	days := int(to.toTime().Sub(from.toTime()).Hours() / 24)
	return FormatNum(strconv.Itoa(days), false)
}

func ageInYearsAndDays(t *Templates, inv Invocation) string {
	from, to, ok := agePair(t, inv)
	if !ok {
		return ""
	}
	years := yearsBetween(from, to)
	anniversary := from.toTime().AddDate(years, 0, 0)
	days := int(to.toTime().Sub(anniversary).Hours() / 24)
	return plural(years, "year") + ", " + plural(days, "day")
}

func ageInYearsAndMonths(t *Templates, inv Invocation) string {
	from, to, ok := agePair(t, inv)
	if !ok {
		return ""
	}
	months := (to.Year-from.Year)*12 + to.Month - from.Month
	if from.Day > 0 && to.Day > 0 && to.Day < from.Day {
		months--
	}
	return plural(months/12, "year") + ", " + plural(months%12, "month")
}

func spanText(prefix string, inv Invocation) string {
	from := arg(inv.Positional, 0)
	to := arg(inv.Positional, 1)
	switch {
	case from == "" && to == "":
		return prefix
	case to == "":
		return prefix + " " + from
	}
	return prefix + " " + from + "–" + to
}

func circa(t *Templates, inv Invocation) string {
	return spanText("c.", inv)
}

func floruit(t *Templates, inv Invocation) string {
	return spanText("fl.", inv)
}

func reign(t *Templates, inv Invocation) string {
	from := arg(inv.Positional, 0)
	if from == "" {
		return "r."
	}
	return "r. " + from + "–" + arg(inv.Positional, 1)
}

var marriageEnds = map[string]string{
	"div":       "div.",
	"div.":      "div.",
	"divorced":  "div.",
	"d":         "died",
	"d.":        "died",
	"died":      "died",
	"ann":       "ann.",
	"ann.":      "ann.",
	"annulled":  "ann.",
	"sep":       "sep.",
	"sep.":      "sep.",
	"separated": "sep.",
}

// marriage renders "Name (m. 1990; div. 2000)" when an end reason is
// given and "Name (m. 1990–2000)" otherwise.
func marriage(t *Templates, inv Invocation) string {
	name := arg(inv.Positional, 0)
	start := arg(inv.Positional, 1)
	end := arg(inv.Positional, 2)
	if start == "" {
		return name
	}
	var span string
	reason := strings.ToLower(inv.Param("end", "reason"))
	switch {
	case end == "":
		span = "m. " + start
	case reason != "":
		label, ok := marriageEnds[reason]
		if !ok {
			label = reason + "."
		}
		span = "m. " + start + "; " + label + " " + end
	default:
		span = "m. " + start + "–" + end
	}
	if name == "" {
		return "(" + span + ")"
	}
	return name + " (" + span + ")"
}

func playedYears(t *Templates, inv Invocation) string {
	from := arg(inv.Positional, 0)
	to := arg(inv.Positional, 1)
	if to == "" || to == from {
		return from
	}
	return from + "–" + to
}

func timeAgo(t *Templates, inv Invocation) string {
	then, ok := ParseDate(arg(inv.Positional, 0), t.ref)
	if !ok {
		return ""
	}
	from, to := dateOf(then), dateOf(t.ref)
	suffix := " ago"
	if then.After(t.ref) {
		from, to = to, from
		suffix = ""
	}
	wrap := func(s string) string {
		if suffix == "" {
			return "in " + s
		}
		return s + suffix
	}
	if years := yearsBetween(from, to); years >= 1 {
		return wrap(plural(years, "year"))
	}
	months := (to.Year-from.Year)*12 + to.Month - from.Month
	if from.Day > to.Day {
		months--
	}
	if months >= 1 {
		return wrap(plural(months, "month"))
	}
	days := int(to.toTime().Sub(from.toTime()).Hours() / 24)
	if days == 0 {
		return "today"
	}
	return wrap(plural(days, "day"))
}
